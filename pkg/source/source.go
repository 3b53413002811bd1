// Package source identifies where configuration and data payloads come from
// and wraps the fetched bytes so loaders can operate on files, fs.FS entries
// or HTTP endpoints without leaking implementation details.
package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a payload originates.
type Source interface {
	Kind() Kind
	Location() string
}

// Kind enumerates the loader modalities.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

// Resource names the payload a source supplies. It is recorded on load
// errors and log records.
type Resource string

const (
	ResourceConfiguration Resource = "configuration"
	ResourceData          Resource = "data"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() Kind       { return KindFile }

// FromFile returns a Source pointing to a file path.
func FromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() Kind       { return KindFS }

// FromFS returns a Source identifying an entry inside an fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() Kind       { return KindURL }

// ParseURL validates raw as an absolute http(s) URL.
func ParseURL(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("source: empty URL")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("source: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported URL scheme %q", u.Scheme)
	}
	return urlSource{raw: u.String()}, nil
}

// FromURL is ParseURL for callers wiring constant endpoints; it panics on an
// invalid URL to surface configuration mistakes early.
func FromURL(raw string) Source {
	src, err := ParseURL(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// Resolve turns an endpoint into a Source. Absolute http(s) URLs are used as
// is, endpoints relative to base are joined with it, and anything else is
// treated as a file path ("file://" prefixes are stripped).
func Resolve(base, endpoint string) (Source, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("source: endpoint is required")
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return ParseURL(endpoint)
	}
	if strings.HasPrefix(endpoint, "file://") {
		return FromFile(strings.TrimPrefix(endpoint, "file://")), nil
	}

	base = strings.TrimSpace(base)
	if base == "" {
		return FromFile(endpoint), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil || (baseURL.Scheme != "http" && baseURL.Scheme != "https") {
		return nil, fmt.Errorf("source: invalid base URL %q", base)
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("source: invalid endpoint %q: %w", endpoint, err)
	}
	return ParseURL(baseURL.ResolveReference(ref).String())
}
