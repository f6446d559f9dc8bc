package schema

import (
	"bytes"
	"errors"
	"path"
	"strings"
)

// Document is a raw descriptor payload together with where it came from.
// The bytes are private; callers get copies.
type Document struct {
	source Source
	raw    []byte
}

func NewDocument(src Source, raw []byte) (Document, error) {
	switch {
	case src == nil:
		return Document{}, errors.New("schema: source is required")
	case len(raw) == 0:
		return Document{}, errors.New("schema: raw document is empty")
	}
	return Document{source: src, raw: bytes.Clone(raw)}, nil
}

// MustNewDocument is NewDocument for fixtures; it panics on error.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d Document) Source() Source { return d.source }

func (d Document) Raw() []byte { return bytes.Clone(d.raw) }

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

func (d Document) Extension() string { return ExtensionOf(d.source) }

// ExtensionOf returns the lower-cased extension of src's location, dot
// included. Query strings and fragments are ignored.
func ExtensionOf(src Source) string {
	if src == nil {
		return ""
	}
	loc, _, _ := strings.Cut(src.Location(), "#")
	loc, _, _ = strings.Cut(loc, "?")
	return strings.ToLower(path.Ext(loc))
}
