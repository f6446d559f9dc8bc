// Package template renders whole documents through pongo2 templates. The
// embedded document.tpl combines the markdown model tables with the apidoc
// route blocks; callers can point the renderer at their own templates.
package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	internalmodel "github.com/goliatone/go-docgen/internal/model"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
	rendertemplate "github.com/goliatone/go-docgen/pkg/render/template"
	"github.com/goliatone/go-docgen/pkg/render/template/pongo"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
	"github.com/goliatone/go-docgen/pkg/renderers/markdown"
)

// DefaultTemplate is rendered unless WithTemplateName says otherwise.
const DefaultTemplate = "document"

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateName     string
	templateRenderer rendertemplate.TemplateRenderer
	contentType      string
	apidocOptions    []apidoc.Option
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTemplateName selects the template executed by Render (extension
// optional).
func WithTemplateName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.templateName = trimmed
		}
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithContentType overrides the reported content type.
func WithContentType(contentType string) Option {
	return func(cfg *config) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithApidocOptions configures the compiler behind each route's apidoc block.
func WithApidocOptions(options ...apidoc.Option) Option {
	return func(cfg *config) {
		cfg.apidocOptions = append(cfg.apidocOptions, options...)
	}
}

// Renderer executes one template per document.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	templateName string
	contentType  string
	routes       *apidoc.Renderer
}

// New constructs the template renderer. Without options it renders the
// embedded document template.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateName: DefaultTemplate,
		contentType:  "text/markdown; charset=utf-8",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	templateRenderer := cfg.templateRenderer
	if templateRenderer == nil {
		engineOptions := []pongo.Option{}
		if cfg.templateDir != "" {
			if _, err := os.Stat(cfg.templateDir); err != nil {
				return nil, fmt.Errorf("template renderer: templates dir: %w", err)
			}
			engineOptions = append(engineOptions, pongo.WithBaseDir(cfg.templateDir))
		}
		files := cfg.templateFS
		if files == nil {
			files = TemplatesFS()
		}
		engineOptions = append(engineOptions, pongo.WithFS(files))

		engine, err := pongo.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("template renderer: configure template renderer: %w", err)
		}
		templateRenderer = engine
	}

	return &Renderer{
		templates:    templateRenderer,
		templateName: cfg.templateName,
		contentType:  cfg.contentType,
		routes:       apidoc.New(cfg.apidocOptions...),
	}, nil
}

// Name identifies the renderer inside the registry.
func (r *Renderer) Name() string {
	return "template"
}

func (r *Renderer) ContentType() string {
	return r.contentType
}

// Render builds the view model for doc and executes the configured template.
func (r *Renderer) Render(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("template renderer: template renderer is nil")
	}

	data, err := r.viewModel(ctx, doc, options)
	if err != nil {
		return nil, err
	}

	rendered, err := r.templates.RenderTemplate(r.templateName, data)
	if err != nil {
		return nil, fmt.Errorf("template renderer: render template: %w", err)
	}
	return []byte(rendered), nil
}

func (r *Renderer) viewModel(ctx context.Context, doc model.Document, options render.RenderOptions) (map[string]any, error) {
	compiled, err := r.routes.CompileAll(ctx, doc.Routes, options)
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}

	models := make([]map[string]any, 0, len(doc.Models))
	for _, m := range doc.Models {
		models = append(models, map[string]any{
			"name":     m.Name,
			"comment":  m.Comment,
			"rows":     modelRows(m),
			"markdown": markdown.RenderModelWith(m, options),
		})
	}

	routes := make([]map[string]any, 0, len(compiled))
	for _, rendered := range compiled {
		route := rendered.Route
		routes = append(routes, map[string]any{
			"method":      route.Method,
			"path":        route.Path,
			"name":        route.Name,
			"group":       route.Group,
			"description": route.Description,
			"version":     route.Version,
			"permissions": append([]string{}, route.Permissions...),
			"apidoc":      rendered.Apidoc,
		})
	}

	data := map[string]any{
		"title":       doc.Title,
		"description": doc.Description,
		"version":     doc.Version,
		"models":      models,
		"routes":      routes,
	}
	for name, fn := range render.TemplateI18nFuncs(options, render.TemplateI18nConfig{}) {
		data[name] = fn
	}
	return data, nil
}

// modelRows mirrors the markdown table: top-level leaves only.
func modelRows(m model.ModelDescriptor) []map[string]any {
	rows := make([]map[string]any, 0, len(m.Attributes))
	for _, prop := range m.Attributes {
		field, ok := prop.Node.(model.FieldDescriptor)
		if !ok {
			continue
		}
		rows = append(rows, map[string]any{
			"attribute":   prop.Name,
			"type":        internalmodel.MapType(field, false),
			"description": internalmodel.DescribeWith(field, prop.Name, nil),
			"primary_key": field.PrimaryKey,
			"foreign_key": field.ForeignKey,
			"required":    field.IsRequired(),
		})
	}
	return rows
}
