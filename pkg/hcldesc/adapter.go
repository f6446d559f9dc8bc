package hcldesc

import (
	"context"
	"fmt"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/schema"
)

const DefaultAdapterName = "hcl"

// Adapter exposes HCL descriptors to the adapter registry.
type Adapter struct{}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs an HCL adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect accepts .hcl sources, and extensionless payloads that parse as HCL
// with a top-level model or route block.
func (a *Adapter) Detect(src schema.Source, raw []byte) bool {
	switch schema.ExtensionOf(src) {
	case ".hcl":
		return true
	case "":
	default:
		return false
	}

	location := "input.hcl"
	if src != nil && src.Location() != "" {
		location = src.Location()
	}
	body, err := parseBody(location, raw)
	if err != nil {
		return false
	}
	for _, block := range body.Blocks {
		if block.Type == "model" || block.Type == "route" {
			return true
		}
	}
	return false
}

// Parse decodes the raw document.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, fmt.Errorf("hcl adapter: %w", err)
	}
	return Decode(doc.Location(), doc.Raw())
}
