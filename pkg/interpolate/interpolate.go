// Package interpolate substitutes ${field} markers in templates with values
// from a data record. Markers naming a field the record does not carry are
// left untouched, so partially matching templates degrade to literal text
// instead of failing.
package interpolate

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-dynview/pkg/model"
)

var marker = regexp.MustCompile(`\$\{(\w+)\}`)

// Interpolate replaces every ${identifier} whose identifier is present in
// record with the value's string form.
func Interpolate(template string, record model.Record) string {
	if !strings.Contains(template, "${") {
		return template
	}
	return marker.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := record.Lookup(name); ok {
			return value
		}
		return match
	})
}

// Value interpolates every string found in v, descending into maps and
// slices. Other values are returned as is. The input is never mutated.
func Value(v any, record model.Record) any {
	switch typed := v.(type) {
	case string:
		return Interpolate(typed, record)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = Value(item, record)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Value(item, record)
		}
		return out
	default:
		return typed
	}
}

// Fields lists the identifiers referenced by template in first-seen order.
func Fields(template string) []string {
	matches := marker.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Missing lists the identifiers referenced by template that record cannot
// resolve.
func Missing(template string, record model.Record) []string {
	var out []string
	for _, name := range Fields(template) {
		if _, ok := record.Lookup(name); !ok {
			out = append(out, name)
		}
	}
	return out
}
