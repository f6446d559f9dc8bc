package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/schema"
)

// resolveAdapter honours an explicit format, otherwise detects one from the
// payload. Zero or several matches fall back to the default adapter when one
// is configured.
func (o *Orchestrator) resolveAdapter(req Request, doc schema.Document) (schema.FormatAdapter, error) {
	if format := strings.TrimSpace(req.Format); format != "" {
		return o.adapters.Get(format)
	}

	matches := o.adapters.Detect(doc.Source(), doc.Raw())
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if o.defaultAdapter != "" {
			return o.adapters.Get(o.defaultAdapter)
		}
		return nil, fmt.Errorf("orchestrator: unable to detect format of %s, specify one of: %s",
			doc.Location(), strings.Join(o.adapters.List(), ", "))
	default:
		if o.defaultAdapter != "" {
			return o.adapters.Get(o.defaultAdapter)
		}
		return nil, fmt.Errorf("orchestrator: multiple formats matched %s (%s), specify format",
			doc.Location(), formatAdapterNames(matches))
	}
}

func (o *Orchestrator) resolveSchemaDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.SchemaDocument != nil {
		return *req.SchemaDocument, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	if o.loader == nil {
		return schema.Document{}, errors.New("orchestrator: loader is nil")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func formatAdapterNames(adapters []schema.FormatAdapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		if name := strings.TrimSpace(adapter.Name()); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
