package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-docgen/internal/loader"
	"github.com/goliatone/go-docgen/pkg/schema"
)

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libros.yaml")
	if err := os.WriteFile(path, []byte("title: Biblioteca\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := loader.New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != "title: Biblioteca\n" {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Extension() != ".yaml" {
		t.Fatalf("unexpected extension %q", doc.Extension())
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := loader.New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFile("does/not/exist.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"descriptors/api.hcl": {Data: []byte(`model "libro" {}`)},
	}
	l := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), schema.SourceFromFS("descriptors/api.hcl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != "descriptors/api.hcl" || doc.Source().Kind() != schema.SourceKindFS {
		t.Fatalf("unexpected document origin %q", doc.Location())
	}
}

func TestLoader_FSNotConfigured(t *testing.T) {
	_, err := loader.New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFS("api.yaml"))
	if err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.3"}`))
	}))
	defer server.Close()

	l := loader.New(schema.NewLoaderOptions(schema.WithHTTPClient(server.Client()), schema.WithHTTPFallback(time.Second)))

	doc, err := l.Load(context.Background(), schema.SourceFromURL(server.URL+"/openapi.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"openapi":"3.0.3"}` {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	if _, err := l.Load(context.Background(), schema.SourceFromURL(server.URL+"/missing")); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoader_HTTPDisabled(t *testing.T) {
	_, err := loader.New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromURL("https://example.com/api.yaml"))
	if !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}
}

func TestLoader_InlineRejected(t *testing.T) {
	if _, err := loader.New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceInline("stdin.yaml")); err == nil {
		t.Fatalf("expected inline sources to be rejected")
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := fstest.MapFS{"a.yaml": {Data: []byte("x")}}
	_, err := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(files))).Load(ctx, schema.SourceFromFS("a.yaml"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
