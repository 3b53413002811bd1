package model

import (
	"encoding/json"
	"strconv"
)

// DefaultComponentName is used when a schema omits componentName.
const DefaultComponentName = "dynamic-component"

// ElementKind identifies how an element declaration renders.
type ElementKind string

const (
	ElementText   ElementKind = "text"
	ElementButton ElementKind = "button"
	ElementLink   ElementKind = "link"
)

// Known reports whether the kind has a dedicated renderer.
func (k ElementKind) Known() bool {
	switch k {
	case ElementText, ElementButton, ElementLink:
		return true
	default:
		return false
	}
}

// ActionType identifies what activating a button does.
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionCustom   ActionType = "custom"
	// ActionClick is the legacy spelling of ActionNavigate found in older
	// configuration payloads.
	ActionClick ActionType = "click"
)

// Schema is the server-delivered configuration describing what to render for
// every record.
type Schema struct {
	ComponentName string    `json:"componentName,omitempty"`
	Elements      []Element `json:"elements"`
}

// Name returns the component name, falling back to DefaultComponentName.
func (s Schema) Name() string {
	if s.ComponentName == "" {
		return DefaultComponentName
	}
	return s.ComponentName
}

// Clone returns a deep copy so render cycles never observe later mutations.
func (s Schema) Clone() Schema {
	out := Schema{ComponentName: s.ComponentName}
	if len(s.Elements) == 0 {
		return out
	}
	out.Elements = make([]Element, len(s.Elements))
	for i, el := range s.Elements {
		out.Elements[i] = el.Clone()
	}
	return out
}

// Element is one declared renderable unit. Only the fields relevant to Kind
// are read by renderers: Content for text, Label and Action for buttons, Label
// and Href for links.
type Element struct {
	Kind    ElementKind `json:"kind"`
	Content string      `json:"content,omitempty"`
	Label   string      `json:"label,omitempty"`
	Href    string      `json:"href,omitempty"`
	Action  *Action     `json:"action,omitempty"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	if e.Action != nil {
		action := e.Action.Clone()
		out.Action = &action
	}
	return out
}

// Action describes the effect of activating a button.
type Action struct {
	Type    ActionType     `json:"type,omitempty"`
	URL     string         `json:"url,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Navigates reports whether the action requests a navigation.
func (a Action) Navigates() bool {
	return a.Type == ActionNavigate || a.Type == ActionClick
}

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	out := a
	if a.Payload != nil {
		out.Payload = cloneMap(a.Payload)
	}
	return out
}

// Record is one entity's flat field values.
type Record map[string]any

// Lookup returns the string form of field. Missing fields and null values
// report false.
func (r Record) Lookup(field string) (string, bool) {
	value, ok := r[field]
	if !ok || value == nil {
		return "", false
	}
	return Stringify(value), true
}

// Clone returns a shallow copy; record values are scalars.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Stringify renders a scalar record value the way templates display it.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return typed
	}
}
