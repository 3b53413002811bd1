package validation

import (
	"strings"
	"testing"
)

func TestValidateSchema_Valid(t *testing.T) {
	raw := []byte(`{
  "componentName": "user-list",
  "elements": [
    { "type": "text", "content": "User: ${name}" },
    { "type": "button", "label": "Open", "action": { "type": "custom", "payload": { "userId": "${id}" } } },
    { "kind": "carousel" }
  ]
}`)
	result := ValidateSchema(raw)
	if !result.Valid {
		t.Fatalf("expected schema to be valid: %#v", result.Issues)
	}
	if result.Err() != nil {
		t.Fatalf("valid result must not produce an error")
	}
}

func TestValidateSchema_YAML(t *testing.T) {
	raw := []byte(`
componentName: demo
elements:
  - kind: link
    href: /users/${id}
    label: Profile
`)
	if result := ValidateSchema(raw); !result.Valid {
		t.Fatalf("expected YAML schema to be valid: %#v", result.Issues)
	}
}

func TestValidateSchema_FieldPath(t *testing.T) {
	raw := []byte(`{"elements":[{"type":"text","content":42}]}`)
	result := ValidateSchema(raw)
	if result.Valid {
		t.Fatalf("expected schema to be invalid")
	}
	if len(result.Issues) == 0 {
		t.Fatalf("expected validation issues")
	}
	if got := result.Issues[0].Field; got != "elements.0.content" {
		t.Fatalf("expected field path elements.0.content, got %q", got)
	}
	if got := result.Issues[0].Path; got != "#/elements/0/content" {
		t.Fatalf("unexpected pointer %q", got)
	}
	if err := result.Err(); err == nil || !strings.Contains(err.Error(), "elements.0.content") {
		t.Fatalf("expected folded error to mention the field, got %v", err)
	}
}

func TestValidateSchema_RejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"text"`, ``} {
		if result := ValidateSchema([]byte(raw)); result.Valid {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestValidateRecords(t *testing.T) {
	valid := []byte(`[{"id":1,"name":"John","active":true,"nickname":null},{}]`)
	if result := ValidateRecords(valid); !result.Valid {
		t.Fatalf("expected records to be valid: %#v", result.Issues)
	}

	nested := []byte(`[{"id":1,"address":{"city":"Oslo"}}]`)
	if result := ValidateRecords(nested); result.Valid {
		t.Fatalf("expected nested record values to be rejected")
	}

	notArray := []byte(`{"id":1}`)
	if result := ValidateRecords(notArray); result.Valid {
		t.Fatalf("expected object payload to be rejected")
	}
}

func TestPointerPathEscapes(t *testing.T) {
	if got := pointerPath([]string{"a/b", "c~d"}); got != "#/a~1b/c~0d" {
		t.Fatalf("unexpected pointer %q", got)
	}
	if got := pointerPath(nil); got != "" {
		t.Fatalf("expected empty pointer, got %q", got)
	}
}

func TestValidateSchema_NullableTopLevel(t *testing.T) {
	for _, raw := range []string{
		`{"componentName":null,"elements":[]}`,
		`{"elements":null}`,
		`{}`,
	} {
		if result := ValidateSchema([]byte(raw)); !result.Valid {
			t.Fatalf("expected %s to be valid: %#v", raw, result.Issues)
		}
	}
}
