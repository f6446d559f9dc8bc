package apidoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
)

// Renderer emits the annotation blocks of every route in a document.
type Renderer struct {
	options []Option
}

// New constructs the apidoc renderer. Options apply to every Render call;
// the per-call RenderOptions set locale and translator.
func New(options ...Option) *Renderer {
	return &Renderer{options: options}
}

func (r *Renderer) Name() string {
	return "apidoc"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	compiled, err := r.CompileAll(ctx, doc.Routes, options)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, route := range compiled {
		b.WriteString(route.Apidoc)
	}
	return []byte(b.String()), nil
}

// CompileAll compiles routes in order, stopping at the first failure or when
// ctx is done.
func (r *Renderer) CompileAll(ctx context.Context, routes []model.RouteDescriptor, options render.RenderOptions) ([]model.RenderedRoute, error) {
	compiler := NewCompiler(append(append([]Option(nil), r.options...), WithRenderOptions(options))...)

	out := make([]model.RenderedRoute, 0, len(routes))
	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("apidoc renderer: %w", err)
		}
		compiled, err := compiler.Compile(route)
		if err != nil {
			return nil, fmt.Errorf("apidoc renderer: %w", err)
		}
		out = append(out, compiled)
	}
	return out, nil
}
