package descriptor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/schema"
)

const DefaultAdapterName = "descriptor"

// Adapter exposes the descriptor format to the adapter registry.
type Adapter struct{}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs a descriptor adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the payload is a YAML or JSON mapping with a
// top-level models or routes key and no OpenAPI marker.
func (a *Adapter) Detect(src schema.Source, raw []byte) bool {
	switch schema.ExtensionOf(src) {
	case "", ".yaml", ".yml", ".json":
	default:
		return false
	}
	return detectDescriptor(raw)
}

// Parse decodes the raw document.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, fmt.Errorf("descriptor adapter: %w", err)
	}
	raw := doc.Raw()
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Document{}, errors.New("descriptor adapter: empty document")
	}
	out, err := Decode(raw)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return out, nil
}

func detectDescriptor(raw []byte) bool {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &probe); err != nil || probe == nil {
		return false
	}
	for _, marker := range []string{"openapi", "swagger"} {
		if _, ok := probe[marker]; ok {
			return false
		}
	}
	_, models := probe["models"]
	_, routes := probe["routes"]
	return models || routes
}
