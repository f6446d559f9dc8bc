// Package testsupport holds fixture and golden-file helpers shared by the
// package tests. Set UPDATE_GOLDENS=1 to rewrite goldens from current output.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-docgen/internal/loader"
	"github.com/goliatone/go-docgen/pkg/schema"
)

// LoadDocument reads path from disk into a file-backed Document.
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return mustDocument(t, schema.SourceFromFile(path), data)
}

// InlineDocument wraps raw in a Document whose inline source is called name.
func InlineDocument(t *testing.T, name, raw string) schema.Document {
	t.Helper()
	return mustDocument(t, schema.SourceInline(name), []byte(raw))
}

func mustDocument(t *testing.T, src schema.Source, data []byte) schema.Document {
	t.Helper()
	doc, err := schema.NewDocument(src, data)
	if err != nil {
		t.Fatalf("document %s: %v", src.Location(), err)
	}
	return doc
}

// FileLoader is a loader that only reads local files.
func FileLoader() schema.Loader {
	return loader.New(schema.NewLoaderOptions())
}

func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden stores data at path when UPDATE_GOLDENS is set and reports
// whether it did, so the caller can skip the comparison.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
