package pongo_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docgen/pkg/render/template/pongo"
)

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	engine, err := pongo.New(append([]pongo.Option{pongo.WithBaseDir("testdata/templates")}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func TestRenderTemplate_FromBaseDir(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}

	// cached template, explicit extension
	got, err = engine.RenderTemplate("hello.tpl", map[string]any{"name": "Grace"})
	if err != nil {
		t.Fatalf("render cached: %v", err)
	}
	if got != "Hello Grace!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderTemplate_FromFS(t *testing.T) {
	files := fstest.MapFS{
		"models.tpl": {Data: []byte("{% for m in models %}{{ m.name }};{% endfor %}")},
	}
	engine, err := pongo.New(pongo.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("models", map[string]any{
		"models": []map[string]any{{"name": "libro"}, {"name": "autor"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "libro;autor;" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderTemplate_Missing(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("nope", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestRenderTemplate_CustomExtension(t *testing.T) {
	files := fstest.MapFS{"page.md": {Data: []byte("# {{ title }}")}}
	engine, err := pongo.New(pongo.WithFS(files), pongo.WithExtension("md"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("page", map[string]any{"title": "Biblioteca"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "# Biblioteca" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGlobalContext(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobalData(map[string]any{"site": "Docs"}))

	got, err := engine.RenderTemplate("use-global", map[string]any{"title": "  Libros  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Docs: Libros" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := engine.GlobalContext(map[string]any{"site": "API"}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err = engine.RenderString("{{ site }}", nil)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "API" {
		t.Fatalf("global not updated, got %q", got)
	}
}

func TestDefaultFilters(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("use-filter", map[string]any{
		"name":    "titulo",
		"comment": "a|b\nc",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `| titulo   | a\|b c |`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWithTemplateFunc_Global(t *testing.T) {
	engine := newEngine(t, pongo.WithTemplateFunc(map[string]any{
		"shout": func(s string) string { return strings.ToUpper(s) },
	}))

	got, err := engine.RenderString(`{{ shout("libros") }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "LIBROS" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestWithTemplateFunc_RejectsNonCallable(t *testing.T) {
	_, err := pongo.New(
		pongo.WithBaseDir("testdata/templates"),
		pongo.WithTemplateFunc(map[string]any{"bad": 42}),
	)
	if err == nil {
		t.Fatalf("expected error for non-callable helper")
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)

	reverse := func(input any, _ any) (any, error) {
		s, _ := input.(string)
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	}
	if err := engine.RegisterFilter("docgen_test_reverse", reverse); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.RegisterFilter("docgen_test_reverse", reverse); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	got, err := engine.RenderString("{{ word|docgen_test_reverse }}", map[string]any{"word": "orbil"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "libro" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegisterFilter_PropagatesError(t *testing.T) {
	engine := newEngine(t)
	boom := errors.New("boom")
	if err := engine.RegisterFilter("docgen_test_fail", func(any, any) (any, error) { return nil, boom }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := engine.RenderString("{{ x|docgen_test_fail }}", map[string]any{"x": 1}); err == nil {
		t.Fatalf("expected filter error")
	}
}

func TestRender_DetectsInlineContent(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "x"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "1-x" || buf.String() != "1-x" {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}

	got, err = engine.Render("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render named: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderString_StructData(t *testing.T) {
	type view struct {
		Title string `json:"title"`
		Group string `json:"group"`
	}
	engine := newEngine(t)

	got, err := engine.RenderString("{{ title }}/{{ group }}", view{Title: "Biblioteca", Group: "Libros"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Biblioteca/Libros" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderString_NonObjectData(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderString("{{ x }}", []int{1, 2}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}
