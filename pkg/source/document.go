package source

import "errors"

// Document wraps a fetched payload and its origin.
type Document struct {
	source   Source
	raw      []byte
	attempts int
}

// NewDocument constructs a Document while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("source: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("source: payload is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone, attempts: 1}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// WithAttempts records how many requests it took to obtain the payload.
func (d Document) WithAttempts(n int) Document {
	if n > 0 {
		d.attempts = n
	}
	return d
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Attempts reports how many requests were issued for the payload.
func (d Document) Attempts() int {
	return d.attempts
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
