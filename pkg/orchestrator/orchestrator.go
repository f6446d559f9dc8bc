package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-docgen/internal/loader"
	"github.com/goliatone/go-docgen/internal/openapi/parser"
	"github.com/goliatone/go-docgen/pkg/descriptor"
	"github.com/goliatone/go-docgen/pkg/hcldesc"
	"github.com/goliatone/go-docgen/pkg/jsonschema"
	"github.com/goliatone/go-docgen/pkg/model"
	pkgopenapi "github.com/goliatone/go-docgen/pkg/openapi"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
	"github.com/goliatone/go-docgen/pkg/renderers/markdown"
	doctemplate "github.com/goliatone/go-docgen/pkg/renderers/template"
	"github.com/goliatone/go-docgen/pkg/schema"
)

const defaultRendererName = "apidoc"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(l schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithAdapterRegistry replaces the format adapter registry. The built-in
// adapters are not added to a caller supplied registry.
func WithAdapterRegistry(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapters = registry
	}
}

// WithAdapters registers extra format adapters next to the built-in ones.
func WithAdapters(adapters ...schema.FormatAdapter) Option {
	return func(o *Orchestrator) {
		o.extraAdapters = append(o.extraAdapters, adapters...)
	}
}

// WithDefaultAdapter names the adapter used when detection is inconclusive.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithOpenAPIParser overrides the parser behind the built-in openapi adapter.
func WithOpenAPIParser(p pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.openapiParser = p
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that runs after parsing and before
// decorators.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the parsed document
// before rendering, in order.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger sets the logger used for pipeline stage traces.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from descriptor source to rendered
// output. Missing dependencies are initialised with the built-in
// implementations: file/fs loader, descriptor, hcl, jsonschema and openapi
// adapters, apidoc, markdown and template renderers.
type Orchestrator struct {
	loader          schema.Loader
	adapters        *AdapterRegistry
	extraAdapters   []schema.FormatAdapter
	defaultAdapter  string
	openapiParser   pkgopenapi.Parser
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one generation run. Exactly one of Source,
// SchemaDocument or Document is used, in reverse order of preference:
// Document skips loading and parsing entirely.
type Request struct {
	// Source identifies where the descriptor lives.
	Source schema.Source

	// SchemaDocument bypasses the loader with an already fetched payload.
	SchemaDocument *schema.Document

	// Document bypasses loading and parsing.
	Document *model.Document

	// Format names the adapter. Empty means detect.
	Format string

	// Renderer names the renderer. Empty uses the configured default.
	Renderer string

	// RenderOptions carries locale, subset and sanitize settings.
	RenderOptions render.RenderOptions
}

// Generate executes load → detect → parse → transform → decorate → render
// and returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	doc, err := o.Parse(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	prepared := render.Prepare(doc, req.RenderOptions)
	o.logger.Debug("rendering document",
		"renderer", renderer.Name(),
		"models", len(prepared.Models),
		"routes", len(prepared.Routes),
	)

	output, err := renderer.Render(ctx, prepared, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Parse runs the pipeline up to, and excluding, rendering.
func (o *Orchestrator) Parse(ctx context.Context, req Request) (model.Document, error) {
	if ctx == nil {
		return model.Document{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.Document{}, err
	}

	var doc model.Document
	if req.Document != nil {
		doc = *req.Document
	} else {
		raw, err := o.resolveSchemaDocument(ctx, req)
		if err != nil {
			return model.Document{}, err
		}
		adapter, err := o.resolveAdapter(req, raw)
		if err != nil {
			return model.Document{}, err
		}
		o.logger.Debug("parsing document", "source", raw.Location(), "format", adapter.Name())

		doc, err = adapter.Parse(ctx, raw)
		if err != nil {
			return model.Document{}, fmt.Errorf("orchestrator: parse %s: %w", adapter.Name(), err)
		}
	}

	if err := o.applyTransformer(ctx, &doc); err != nil {
		return model.Document{}, err
	}
	if err := o.applyDecorators(&doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Adapters exposes the format adapter registry.
func (o *Orchestrator) Adapters() *AdapterRegistry {
	return o.adapters
}

// Renderers exposes the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.registry
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDecorators(doc *model.Document) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(doc); err != nil {
			return fmt.Errorf("orchestrator: decorate document: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, doc *model.Document) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, doc); err != nil {
		return fmt.Errorf("orchestrator: transform document: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = loader.New(schema.NewLoaderOptions())
	}

	if o.adapters == nil {
		if o.openapiParser == nil {
			o.openapiParser = parser.New(pkgopenapi.NewParserOptions())
		}
		o.adapters = NewAdapterRegistry()
		for _, adapter := range []schema.FormatAdapter{
			descriptor.NewAdapter(),
			hcldesc.NewAdapter(),
			jsonschema.NewAdapter(o.loader),
			pkgopenapi.NewAdapter(o.openapiParser),
		} {
			o.adapters.MustRegister(adapter)
		}
	}
	for _, adapter := range o.extraAdapters {
		if err := o.adapters.Register(adapter); err != nil {
			o.initialiseErr = errors.Join(o.initialiseErr, err)
		}
	}

	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(apidoc.New())
		o.registry.MustRegister(markdown.New())
		renderer, err := doctemplate.New()
		if err != nil {
			o.initialiseErr = errors.Join(o.initialiseErr, fmt.Errorf("orchestrator: template renderer: %w", err))
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
