package schema

import (
	"context"

	"github.com/goliatone/go-docgen/pkg/model"
)

// FormatAdapter turns a raw descriptor document of one format into the
// document model. Detect must be cheap and must not fail; Parse reports
// malformed payloads as errors.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Parse(ctx context.Context, doc Document) (model.Document, error)
}
