// Package docgen generates API documentation from model and route
// descriptors. It re-exports the pieces most callers need so the common
// paths do not require importing the sub-packages directly.
package docgen

import (
	"context"
	"io/fs"

	internalLoader "github.com/goliatone/go-docgen/internal/loader"
	internalParser "github.com/goliatone/go-docgen/internal/openapi/parser"
	"github.com/goliatone/go-docgen/pkg/model"
	pkgopenapi "github.com/goliatone/go-docgen/pkg/openapi"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
	"github.com/goliatone/go-docgen/pkg/renderers/markdown"
	doctemplate "github.com/goliatone/go-docgen/pkg/renderers/template"
	"github.com/goliatone/go-docgen/pkg/router"
	"github.com/goliatone/go-docgen/pkg/schema"
)

// RenderOptions describes per-request locale, sanitisation and subset
// settings.
type RenderOptions = render.RenderOptions

// DocumentSubset aliases render.DocumentSubset for callers rendering only
// part of a document.
type DocumentSubset = render.DocumentSubset

// Document is the format-independent description of models and routes.
type Document = model.Document

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate loads source, detects its format and renders it with the named
// renderer. An empty renderer name selects apidoc.
func Generate(ctx context.Context, source schema.Source, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: rendererName,
	})
}

// GenerateFromDocument renders an already built document, bypassing the
// loading and parsing stages.
func GenerateFromDocument(ctx context.Context, doc model.Document, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document: &doc,
		Renderer: rendererName,
	})
}

// RenderModel renders a single model as a markdown table.
func RenderModel(m model.ModelDescriptor) string {
	return markdown.RenderModel(m)
}

// Compile renders the apidoc block of a single route.
func Compile(route model.RouteDescriptor) (model.RenderedRoute, error) {
	return apidoc.Compile(route)
}

// NewRouter returns a route collector that compiles every registered route.
func NewRouter(options ...router.Option) *router.Router {
	return router.New(options...)
}

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalLoader.New(schema.NewLoaderOptions(options...))
}

// NewParser constructs an OpenAPI parser backed by the internal implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}

// EmbeddedTemplates exposes the template renderer's built-in templates so
// callers can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return doctemplate.TemplatesFS()
}
