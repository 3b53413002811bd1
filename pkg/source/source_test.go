package source_test

import (
	"testing"

	"github.com/goliatone/go-dynview/pkg/source"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		endpoint string
		kind     source.Kind
		location string
	}{
		{"absolute url", "", "http://localhost:3000/config", source.KindURL, "http://localhost:3000/config"},
		{"relative to base", "http://localhost:3000", "/data", source.KindURL, "http://localhost:3000/data"},
		{"relative path to base", "https://api.example.com/v1/", "config", source.KindURL, "https://api.example.com/v1/config"},
		{"file path", "", "testdata/config.json", source.KindFile, "testdata/config.json"},
		{"file scheme", "http://ignored", "file://fixtures/data.json", source.KindFile, "fixtures/data.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := source.Resolve(tc.base, tc.endpoint)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if src.Kind() != tc.kind || src.Location() != tc.location {
				t.Fatalf("got %s %q, want %s %q", src.Kind(), src.Location(), tc.kind, tc.location)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	if _, err := source.Resolve("", "  "); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
	if _, err := source.Resolve("ftp://host", "/config"); err == nil {
		t.Fatalf("expected error for non-http base")
	}
	if _, err := source.ParseURL("mailto:someone@example.com"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestFromURLPanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	source.FromURL("not a url")
}

func TestDocument(t *testing.T) {
	if _, err := source.NewDocument(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := source.NewDocument(source.FromFS("a.json"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}

	raw := []byte(`{"elements":[]}`)
	doc := source.MustNewDocument(source.FromFS("a.json"), raw).WithAttempts(3)
	raw[0] = 'X'
	if got := string(doc.Raw()); got != `{"elements":[]}` {
		t.Fatalf("document shares caller buffer: %s", got)
	}
	if doc.Attempts() != 3 || doc.Location() != "a.json" || doc.Source().Kind() != source.KindFS {
		t.Fatalf("unexpected document metadata: %d %q", doc.Attempts(), doc.Location())
	}
}
