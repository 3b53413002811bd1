package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type schemaFile struct {
	ComponentName string        `json:"componentName" yaml:"componentName"`
	Elements      []elementFile `json:"elements" yaml:"elements"`
}

// elementFile accepts the kind under either "kind" or "type"; payloads in the
// wild use both spellings.
type elementFile struct {
	Kind    string      `json:"kind" yaml:"kind"`
	Type    string      `json:"type" yaml:"type"`
	Content string      `json:"content" yaml:"content"`
	Label   string      `json:"label" yaml:"label"`
	Href    string      `json:"href" yaml:"href"`
	Action  *actionFile `json:"action" yaml:"action"`
}

type actionFile struct {
	Type    string         `json:"type" yaml:"type"`
	URL     string         `json:"url" yaml:"url"`
	Payload map[string]any `json:"payload" yaml:"payload"`
}

// ParseSchema decodes a configuration payload. JSON is tried first, then
// YAML so file based configurations can use either.
func ParseSchema(raw []byte) (Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Schema{}, errors.New("model: schema payload is empty")
	}

	var file schemaFile
	jsonErr := json.Unmarshal(raw, &file)
	if jsonErr != nil {
		file = schemaFile{}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Schema{}, fmt.Errorf("model: parse schema: %w", jsonErr)
		}
	}

	schema := Schema{
		ComponentName: strings.TrimSpace(file.ComponentName),
		Elements:      make([]Element, 0, len(file.Elements)),
	}
	for _, el := range file.Elements {
		schema.Elements = append(schema.Elements, el.element())
	}
	return schema, nil
}

func (f elementFile) element() Element {
	kind := f.Kind
	if kind == "" {
		kind = f.Type
	}
	el := Element{
		Kind:    ElementKind(strings.TrimSpace(kind)),
		Content: f.Content,
		Label:   f.Label,
		Href:    f.Href,
	}
	if f.Action != nil {
		el.Action = &Action{
			Type:    ActionType(strings.TrimSpace(f.Action.Type)),
			URL:     f.Action.URL,
			Payload: f.Action.Payload,
		}
	}
	return el
}

// ParseRecords decodes a data payload: a JSON (or YAML) array of flat
// objects. Numbers are kept as json.Number so identifiers render exactly as
// delivered.
func ParseRecords(raw []byte) ([]Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("model: records payload is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []Record
	jsonErr := dec.Decode(&records)
	if jsonErr != nil {
		records = nil
		if err := yaml.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("model: parse records: %w", jsonErr)
		}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
