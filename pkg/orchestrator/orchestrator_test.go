package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/schema"
	"github.com/goliatone/go-docgen/pkg/testsupport"
)

const descriptorFixture = "../descriptor/testdata/biblioteca.yaml"

type stubRenderer struct {
	name  string
	calls int
	last  model.Document
	opts  render.RenderOptions
}

func (s *stubRenderer) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubRenderer) ContentType() string { return "text/plain" }

func (s *stubRenderer) Render(_ context.Context, doc model.Document, opts render.RenderOptions) ([]byte, error) {
	s.calls++
	s.last = doc
	s.opts = opts
	return []byte("rendered:" + doc.Title), nil
}

type stubAdapter struct {
	name   string
	detect bool
	doc    model.Document
	err    error
	parsed int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Detect(schema.Source, []byte) bool { return s.detect }

func (s *stubAdapter) Parse(context.Context, schema.Document) (model.Document, error) {
	s.parsed++
	return s.doc, s.err
}

func stubRegistry(r render.Renderer) *render.Registry {
	registry := render.NewRegistry()
	registry.MustRegister(r)
	return registry
}

func TestGenerate_DescriptorFileWithDefaultRenderer(t *testing.T) {
	orch := orchestrator.New()

	out, err := orch.Generate(context.Background(), orchestrator.Request{
		Source: schema.SourceFromFile(descriptorFixture),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"@api {post} /libros",
		"@apiGroup Libros",
		"@apiDefine admin",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestGenerate_NamedRenderers(t *testing.T) {
	orch := orchestrator.New()
	req := orchestrator.Request{Source: schema.SourceFromFile(descriptorFixture), Renderer: "markdown"}

	out, err := orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Biblioteca\n") || !strings.Contains(string(out), "### **libro**") {
		t.Fatalf("unexpected markdown output:\n%s", out)
	}

	req.Renderer = "template"
	req.RenderOptions = render.RenderOptions{Locale: "es"}
	out, err = orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate template: %v", err)
	}
	if !strings.Contains(string(out), "## Modelos") || !strings.Contains(string(out), "## Rutas") {
		t.Fatalf("unexpected template output:\n%s", out)
	}
}

func TestGenerate_UnknownRenderer(t *testing.T) {
	orch := orchestrator.New()
	_, err := orch.Generate(context.Background(), orchestrator.Request{
		Source:   schema.SourceFromFile(descriptorFixture),
		Renderer: "pdf",
	})
	if err == nil || !strings.Contains(err.Error(), `renderer "pdf"`) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
}

func TestGenerate_PassesPreparedDocumentToRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	orch := orchestrator.New(
		orchestrator.WithRegistry(stubRegistry(renderer)),
		orchestrator.WithDefaultRenderer(renderer.Name()),
	)

	doc := model.Document{
		Title:  "Biblioteca",
		Models: []model.ModelDescriptor{{Name: "libro"}, {Name: "autor"}},
	}
	opts := render.RenderOptions{Locale: "es", Subset: render.DocumentSubset{Models: []string{"autor"}}}

	out, err := orch.Generate(context.Background(), orchestrator.Request{Document: &doc, RenderOptions: opts})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "rendered:Biblioteca" {
		t.Fatalf("unexpected output %q", out)
	}
	if renderer.calls != 1 {
		t.Fatalf("expected a single render call, got %d", renderer.calls)
	}
	if diff := cmp.Diff([]model.ModelDescriptor{{Name: "autor"}}, renderer.last.Models); diff != "" {
		t.Fatalf("subset not applied (-want +got):\n%s", diff)
	}
	if renderer.opts.Locale != "es" {
		t.Fatalf("render options not forwarded: %+v", renderer.opts)
	}
	if len(doc.Models) != 2 {
		t.Fatalf("caller document was modified: %+v", doc.Models)
	}
}

func TestParse_ExplicitFormat(t *testing.T) {
	adapter := &stubAdapter{name: "custom", doc: model.Document{Title: "custom"}}
	orch := orchestrator.New(orchestrator.WithAdapters(adapter))

	raw := testsupport.InlineDocument(t, "input.yaml", "models: {}\n")
	doc, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw, Format: "CUSTOM"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "custom" || adapter.parsed != 1 {
		t.Fatalf("explicit format was not honoured: %+v", doc)
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	orch := orchestrator.New()
	raw := testsupport.InlineDocument(t, "input.yaml", "models: {}\n")

	_, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw, Format: "xml"})
	if err == nil || !strings.Contains(err.Error(), `format "xml" not supported`) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if !strings.Contains(err.Error(), "descriptor, hcl, jsonschema, openapi") {
		t.Fatalf("expected known formats in error, got %v", err)
	}
}

func TestParse_DetectsEachBuiltinFormat(t *testing.T) {
	cases := []struct {
		name  string
		file  string
		raw   string
		title string
	}{
		{
			name:  "descriptor",
			file:  "api.yaml",
			raw:   "title: Descriptor\nmodels:\n  libro:\n    attributes:\n      id: INTEGER\n",
			title: "Descriptor",
		},
		{
			name:  "hcl",
			file:  "api.hcl",
			raw:   "title = \"Hcl\"\n\nmodel \"libro\" {\n  field \"id\" {\n    type = \"INTEGER\"\n  }\n}\n",
			title: "Hcl",
		},
		{
			name:  "openapi",
			file:  "api.json",
			raw:   `{"openapi":"3.0.3","info":{"title":"OpenAPI","version":"1.0.0"},"paths":{"/ping":{"get":{"responses":{"200":{"description":"ok"}}}}}}`,
			title: "OpenAPI",
		},
		{
			name:  "jsonschema",
			file:  "libro.schema.json",
			raw:   `{"$schema":"https://json-schema.org/draft/2020-12/schema","properties":{"id":{"type":"integer"}}}`,
			title: "",
		},
	}

	orch := orchestrator.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := testsupport.InlineDocument(t, tc.file, tc.raw)
			doc, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if doc.Title != tc.title {
				t.Fatalf("expected title %q, got %q", tc.title, doc.Title)
			}
		})
	}
}

func TestParse_NoFormatDetected(t *testing.T) {
	orch := orchestrator.New()
	raw := testsupport.InlineDocument(t, "notes.txt", "hello")

	_, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
	if err == nil || !strings.Contains(err.Error(), "unable to detect format") {
		t.Fatalf("expected detection error, got %v", err)
	}
}

func TestParse_AmbiguousDetection(t *testing.T) {
	greedy := &stubAdapter{name: "greedy", detect: true, doc: model.Document{Title: "greedy"}}
	raw := testsupport.InlineDocument(t, "api.yaml", "models:\n  libro: {}\n")

	orch := orchestrator.New(orchestrator.WithAdapters(greedy))
	_, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
	if err == nil || !strings.Contains(err.Error(), "multiple formats matched") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if !strings.Contains(err.Error(), "descriptor, greedy") {
		t.Fatalf("expected matches in registration order, got %v", err)
	}

	orch = orchestrator.New(orchestrator.WithAdapters(greedy), orchestrator.WithDefaultAdapter("greedy"))
	doc, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
	if err != nil {
		t.Fatalf("parse with default adapter: %v", err)
	}
	if doc.Title != "greedy" {
		t.Fatalf("default adapter not used: %+v", doc)
	}
}

func TestParse_AdapterErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	adapter := &stubAdapter{name: "broken", detect: true, err: sentinel}
	registry := orchestrator.NewAdapterRegistry()
	registry.MustRegister(adapter)

	orch := orchestrator.New(orchestrator.WithAdapterRegistry(registry))
	raw := testsupport.InlineDocument(t, "x.yaml", "a: 1\n")

	_, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped adapter error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "orchestrator: parse broken: ") {
		t.Fatalf("unexpected error prefix: %v", err)
	}
}

func TestParse_LoaderErrors(t *testing.T) {
	orch := orchestrator.New()

	if _, err := orch.Parse(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected error for empty request")
	}

	_, err := orch.Parse(context.Background(), orchestrator.Request{Source: schema.SourceFromFile("testdata/missing.yaml")})
	if err == nil || !strings.Contains(err.Error(), "orchestrator: load document") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestParse_DuplicateAdapterRegistration(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithAdapters(&stubAdapter{name: "descriptor"}))
	raw := testsupport.InlineDocument(t, "api.yaml", "models: {}\n")

	_, err := orch.Parse(context.Background(), orchestrator.Request{SchemaDocument: &raw})
	if err == nil || !strings.Contains(err.Error(), `adapter "descriptor" already registered`) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orchestrator.New().Parse(ctx, orchestrator.Request{Document: &model.Document{}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParse_TransformerRunsBeforeDecorators(t *testing.T) {
	var order []string
	transformer := orchestrator.TransformerFunc(func(_ context.Context, doc *model.Document) error {
		order = append(order, "transform")
		doc.Title = "transformed"
		return nil
	})
	first := model.DecoratorFunc(func(doc *model.Document) error {
		order = append(order, "first:"+doc.Title)
		doc.Description = "decorated"
		return nil
	})
	second := model.DecoratorFunc(func(doc *model.Document) error {
		order = append(order, "second:"+doc.Description)
		return nil
	})

	orch := orchestrator.New(
		orchestrator.WithTransformer(transformer),
		orchestrator.WithDecorators(first, nil, second),
	)
	doc, err := orch.Parse(context.Background(), orchestrator.Request{Document: &model.Document{Title: "raw"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if diff := cmp.Diff([]string{"transform", "first:transformed", "second:decorated"}, order); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
	if doc.Title != "transformed" || doc.Description != "decorated" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestParse_StageErrors(t *testing.T) {
	sentinel := errors.New("nope")

	orch := orchestrator.New(orchestrator.WithTransformer(orchestrator.TransformerFunc(
		func(context.Context, *model.Document) error { return sentinel },
	)))
	_, err := orch.Parse(context.Background(), orchestrator.Request{Document: &model.Document{}})
	if !errors.Is(err, sentinel) || !strings.Contains(err.Error(), "transform document") {
		t.Fatalf("expected transformer error, got %v", err)
	}

	orch = orchestrator.New(orchestrator.WithDecorators(model.DecoratorFunc(
		func(*model.Document) error { return sentinel },
	)))
	_, err = orch.Parse(context.Background(), orchestrator.Request{Document: &model.Document{}})
	if !errors.Is(err, sentinel) || !strings.Contains(err.Error(), "decorate document") {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestOrchestrator_Registries(t *testing.T) {
	orch := orchestrator.New()

	if diff := cmp.Diff([]string{"descriptor", "hcl", "jsonschema", "openapi"}, orch.Adapters().List()); diff != "" {
		t.Fatalf("adapters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"apidoc", "markdown", "template"}, orch.Renderers().List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}
