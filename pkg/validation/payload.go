// Package validation checks the shape of configuration and data payloads
// before they are decoded into the model.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes.
type Result struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Err folds the issues into a single error, or nil when the payload is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Field != "" {
			parts = append(parts, issue.Field+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return errors.New(strings.Join(parts, "; "))
}

var (
	shapesOnce   sync.Once
	configShape  *openapi3.Schema
	recordsShape *openapi3.Schema
)

func shapes() (*openapi3.Schema, *openapi3.Schema) {
	shapesOnce.Do(func() {
		configShape = buildConfigShape()
		recordsShape = buildRecordsShape()
	})
	return configShape, recordsShape
}

func buildConfigShape() *openapi3.Schema {
	action := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("url", openapi3.NewStringSchema()).
		WithProperty("payload", nullable(openapi3.NewObjectSchema()))

	element := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("href", openapi3.NewStringSchema()).
		WithProperty("action", nullable(action))

	return openapi3.NewObjectSchema().
		WithProperty("componentName", nullable(openapi3.NewStringSchema())).
		WithProperty("elements", nullable(openapi3.NewArraySchema().WithItems(element)))
}

func buildRecordsShape() *openapi3.Schema {
	scalar := nullable(openapi3.NewAnyOfSchema(
		nullable(openapi3.NewStringSchema()),
		nullable(openapi3.NewFloat64Schema()),
		nullable(openapi3.NewBoolSchema()),
	))
	record := openapi3.NewObjectSchema().WithAdditionalProperties(scalar)
	return openapi3.NewArraySchema().WithItems(record)
}

func nullable(schema *openapi3.Schema) *openapi3.Schema {
	schema.Nullable = true
	return schema
}

// ValidateSchema checks that raw is an object with an optional string
// componentName and an optional elements array of element objects. Both may
// be null.
func ValidateSchema(raw []byte) Result {
	shape, _ := shapes()
	return validate(raw, shape)
}

// ValidateRecords checks that raw is an array of flat records whose values are
// strings, numbers, booleans or null.
func ValidateRecords(raw []byte) Result {
	_, shape := shapes()
	return validate(raw, shape)
}

func validate(raw []byte, shape *openapi3.Schema) Result {
	value, err := decode(raw)
	if err != nil {
		return Result{Valid: false, Issues: []SchemaIssue{{Message: err.Error()}}}
	}

	err = shape.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return Result{Valid: true}
	}
	return Result{Valid: false, Issues: issuesFromError(err)}
}

// decode produces the generic JSON value tree VisitJSON expects. YAML input is
// normalised through a JSON round trip.
func decode(raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("payload is empty")
	}

	var value any
	jsonErr := json.Unmarshal(raw, &value)
	if jsonErr == nil {
		return value, nil
	}

	var yamlValue any
	if err := yaml.Unmarshal(raw, &yamlValue); err != nil {
		return nil, fmt.Errorf("decode payload: %w", jsonErr)
	}
	normalised, err := json.Marshal(yamlValue)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(normalised, &value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}

func issuesFromError(err error) []SchemaIssue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		out := make([]SchemaIssue, 0, len(multi))
		for _, item := range multi {
			out = append(out, issuesFromError(item)...)
		}
		return out
	}
	return []SchemaIssue{issueFromError(err)}
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		return SchemaIssue{
			Path:    pointerPath(pointer),
			Field:   strings.Join(pointer, "."),
			Message: strings.TrimSpace(schemaErr.Reason),
		}
	}
	return SchemaIssue{Message: strings.TrimSpace(err.Error())}
}

func pointerPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		escaped[i] = strings.ReplaceAll(segment, "/", "~1")
	}
	return "#/" + strings.Join(escaped, "/")
}
