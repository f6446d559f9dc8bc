package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/pkg/introspect/sqlite"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"DOCGEN_CONFIG_PATH", "DOCGEN_RENDERER", "DOCGEN_FORMAT", "DOCGEN_LOCALE", "DOCGEN_LOG_LEVEL", "DOCGEN_OUTPUT", "DOCGEN_TEMPLATES_DIR", "DOCGEN_SANITIZE", "DOCGEN_HTTP_TIMEOUT_SECS", "DOCGEN_LABELER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const descriptorFixture = "../../pkg/descriptor/testdata/biblioteca.yaml"

func TestGenerate_DefaultRenderer(t *testing.T) {
	out, _, err := execute(t, "", "generate", descriptorFixture)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "@api {post} /libros Crear libro") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestGenerate_MarkdownSpanishToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "models.md")
	_, stderr, err := execute(t, "", "generate", descriptorFixture, "--renderer", "markdown", "--locale", "es", "-o", target)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "## Modelos") || !strings.Contains(string(data), "### **libro**") {
		t.Fatalf("unexpected markdown:\n%s", data)
	}
	if !strings.Contains(stderr, "written to "+target) {
		t.Fatalf("expected confirmation on stderr, got %q", stderr)
	}
}

func TestGenerate_StdinWithExplicitFormat(t *testing.T) {
	input := "models:\n  autor:\n    attributes:\n      nombre: STRING\n"
	out, _, err := execute(t, input, "generate", "-", "--format", "descriptor", "--renderer", "markdown")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "### **autor**") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestGenerate_LabelerAndUnknownKinds(t *testing.T) {
	input := "routes:\n  - method: post\n    path: /pagos\n    input:\n      body:\n        fecha_de_alta: DATE\n        moneda: {type: MONEY}\n"

	out, stderr, err := execute(t, input, "generate", "-", "--format", "descriptor")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "{Date} [fecha_de_alta] Fecha de alta\n") {
		t.Fatalf("expected sentence label:\n%s", out)
	}
	if !strings.Contains(out, "{String} [moneda] Moneda\n") {
		t.Fatalf("unknown kinds should render as strings:\n%s", out)
	}
	if !strings.Contains(stderr, "unknown field kind") || !strings.Contains(stderr, "kind=MONEY") {
		t.Fatalf("expected unknown kind warning, got %q", stderr)
	}

	out, _, err = execute(t, input, "generate", "-", "--format", "descriptor", "--labeler", "title")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "{Date} [fecha_de_alta] Fecha De Alta\n") {
		t.Fatalf("expected title label:\n%s", out)
	}

	if _, _, err := execute(t, input, "generate", "-", "--labeler", "shout"); err == nil {
		t.Fatalf("expected validation error for unknown labeler")
	}
}

func TestGenerate_PresetAndSubset(t *testing.T) {
	preset := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(preset, []byte("routes:\n  post /libros:\n    group: Catalogo\n"), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	out, _, err := execute(t, "", "generate", descriptorFixture, "--preset", preset, "--groups", "Catalogo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "@apiGroup Catalogo") {
		t.Fatalf("preset not applied:\n%s", out)
	}

	out, _, err = execute(t, "", "generate", descriptorFixture, "--groups", "Otros")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no routes outside the selected group, got:\n%s", out)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if _, _, err := execute(t, "", "generate", "missing.yaml"); err == nil {
		t.Fatalf("expected load error")
	}
	if _, _, err := execute(t, "", "generate", descriptorFixture, "--format", "xml"); err == nil {
		t.Fatalf("expected validation error for unknown format")
	}
	if _, _, err := execute(t, "", "generate"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestRenderers(t *testing.T) {
	out, _, err := execute(t, "", "renderers")
	if err != nil {
		t.Fatalf("renderers: %v", err)
	}
	for _, want := range []string{"apidoc", "markdown", "template", "descriptor", "hcl", "jsonschema", "openapi"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestIntrospectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biblioteca.db")
	db, err := sqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE libro (id INTEGER PRIMARY KEY, titulo TEXT NOT NULL)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	db.Close()

	out, _, err := execute(t, "", "introspect", "sqlite", path, "--title", "Biblioteca")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if !strings.HasPrefix(out, "# Biblioteca\n") || !strings.Contains(out, "`id` [ PK ]") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}

	out, _, err = execute(t, "", "introspect", "sqlite", path, "--emit", "yaml")
	if err != nil {
		t.Fatalf("introspect yaml: %v", err)
	}
	if !strings.Contains(out, "models:\n  libro:\n") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}

	if _, _, err := execute(t, "", "introspect", "sqlite", path, "--emit", "xml"); err == nil {
		t.Fatalf("expected error for unknown emit format")
	}
}
