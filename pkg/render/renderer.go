package render

import (
	"context"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Renderer converts a Document into a byte representation (annotation text,
// markdown, templated output).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc model.Document, options RenderOptions) ([]byte, error)
}
