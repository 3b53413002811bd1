package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynview/pkg/model"
)

func TestParseSchema_AcceptsKindAndTypeSpellings(t *testing.T) {
	raw := []byte(`{
		"componentName": "users",
		"elements": [
			{"type": "text", "content": "User: ${name}"},
			{"kind": "button", "label": "View", "action": {"type": "custom", "payload": {"userId": "${id}"}}},
			{"kind": "link", "type": "ignored", "label": "Site", "href": "${website}"},
			{"type": "carousel"}
		]
	}`)

	schema, err := model.ParseSchema(raw)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	want := model.Schema{
		ComponentName: "users",
		Elements: []model.Element{
			{Kind: model.ElementText, Content: "User: ${name}"},
			{Kind: model.ElementButton, Label: "View", Action: &model.Action{
				Type:    model.ActionCustom,
				Payload: map[string]any{"userId": "${id}"},
			}},
			{Kind: model.ElementLink, Label: "Site", Href: "${website}"},
			{Kind: "carousel"},
		},
	}
	if diff := cmp.Diff(want, schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if schema.Elements[3].Kind.Known() {
		t.Fatalf("carousel should not be a known kind")
	}
}

func TestParseSchema_YAML(t *testing.T) {
	raw := []byte(`
elements:
  - type: text
    content: "Email: ${email}"
  - type: button
    label: Open
    action:
      type: navigate
      url: /users/${id}
`)
	schema, err := model.ParseSchema(raw)
	if err != nil {
		t.Fatalf("parse yaml schema: %v", err)
	}
	if got := schema.Name(); got != model.DefaultComponentName {
		t.Fatalf("expected default component name, got %q", got)
	}
	if len(schema.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(schema.Elements))
	}
	if action := schema.Elements[1].Action; action == nil || !action.Navigates() || action.URL != "/users/${id}" {
		t.Fatalf("unexpected action: %#v", action)
	}
}

func TestParseSchema_RejectsEmptyAndMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":     "   ",
		"truncated": `{"elements": [`,
		"wrongType": `{"elements": "nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := model.ParseSchema([]byte(raw)); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestParseRecords_PreservesOrderAndNumbers(t *testing.T) {
	records, err := model.ParseRecords([]byte(`[{"id": 1, "name": "John"}, {"id": 12345678901234567890, "name": "Jane"}]`))
	if err != nil {
		t.Fatalf("parse records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if got, _ := records[0].Lookup("id"); got != "1" {
		t.Fatalf("expected id 1, got %q", got)
	}
	if got, _ := records[1].Lookup("id"); got != "12345678901234567890" {
		t.Fatalf("large id lost precision: %q", got)
	}
	if got, _ := records[1].Lookup("name"); got != "Jane" {
		t.Fatalf("record order not preserved: %q", got)
	}
}

func TestParseRecords_RejectsNonArray(t *testing.T) {
	if _, err := model.ParseRecords([]byte(`{"id": 1}`)); err == nil {
		t.Fatalf("expected error for object payload")
	}
}

func TestRecordLookup(t *testing.T) {
	record := model.Record{
		"name":   "John",
		"id":     json.Number("7"),
		"score":  1.5,
		"active": true,
		"zero":   0,
		"empty":  "",
		"nil":    nil,
	}

	cases := []struct {
		field string
		want  string
		ok    bool
	}{
		{"name", "John", true},
		{"id", "7", true},
		{"score", "1.5", true},
		{"active", "true", true},
		{"zero", "0", true},
		{"empty", "", true},
		{"nil", "", false},
		{"missing", "", false},
	}
	for _, tc := range cases {
		got, ok := record.Lookup(tc.field)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Lookup(%q) = %q, %v; want %q, %v", tc.field, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSchemaClone_IsDeep(t *testing.T) {
	original := model.Schema{Elements: []model.Element{{
		Kind:   model.ElementButton,
		Action: &model.Action{Type: model.ActionCustom, Payload: map[string]any{"nested": map[string]any{"k": "v"}}},
	}}}
	clone := original.Clone()
	clone.Elements[0].Action.Payload["nested"].(map[string]any)["k"] = "changed"

	if got := original.Elements[0].Action.Payload["nested"].(map[string]any)["k"]; got != "v" {
		t.Fatalf("clone mutated original payload: %v", got)
	}
}

func TestRenderState(t *testing.T) {
	if !model.Loading().IsLoading() || model.Loading().IsReady() {
		t.Fatalf("loading state misreported")
	}
	failed := model.Failed("boom")
	if !failed.IsError() || failed.Message != "boom" || failed.String() != "error: boom" {
		t.Fatalf("unexpected failed state: %#v", failed)
	}
	if !model.Ready().IsReady() {
		t.Fatalf("ready state misreported")
	}
}

func TestDefaultNameDecorator(t *testing.T) {
	schema := model.Schema{}
	if err := model.DefaultName("fallback").Decorate(&schema); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if schema.ComponentName != "fallback" {
		t.Fatalf("expected fallback name, got %q", schema.ComponentName)
	}

	named := model.Schema{ComponentName: "kept"}
	_ = model.DefaultName("fallback").Decorate(&named)
	if named.ComponentName != "kept" {
		t.Fatalf("decorator overwrote explicit name: %q", named.ComponentName)
	}
}

func TestParseSchema_NullFieldsFallBack(t *testing.T) {
	schema, err := model.ParseSchema([]byte(`{"componentName":null,"elements":null}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if schema.Name() != model.DefaultComponentName {
		t.Fatalf("expected default name, got %q", schema.Name())
	}
	if len(schema.Elements) != 0 {
		t.Fatalf("expected no elements, got %d", len(schema.Elements))
	}
}
