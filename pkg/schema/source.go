package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Source tells a Loader where a descriptor lives and how to reach it.
type Source interface {
	Kind() SourceKind
	Location() string
}

type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	// SourceKindInline marks payloads that were never loaded, such as stdin.
	SourceKindInline SourceKind = "inline"
)

type origin struct {
	kind SourceKind
	loc  string
}

func (o origin) Kind() SourceKind { return o.kind }
func (o origin) Location() string { return o.loc }
func (o origin) String() string   { return string(o.kind) + ":" + o.loc }

// SourceFromFile points at a path on disk. The path is cleaned.
func SourceFromFile(path string) Source {
	return origin{kind: SourceKindFile, loc: filepath.Clean(path)}
}

// SourceFromFS points at a slash-separated name inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return origin{kind: SourceKindFS, loc: name}
}

// SourceFromURL points at an http(s) resource. An empty or unparsable URL is
// a programming error and panics.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return origin{kind: SourceKindURL, loc: raw}
}

// SourceInline names an in-memory payload. The extension of name takes part
// in format detection.
func SourceInline(name string) Source {
	return origin{kind: SourceKindInline, loc: name}
}
