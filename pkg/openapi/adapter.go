package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/schema"
)

const DefaultAdapterName = "openapi"

// Adapter wraps a Parser behind the schema adapter interface.
type Adapter struct {
	parser Parser
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs an OpenAPI adapter with the supplied parser.
func NewAdapter(parser Parser) *Adapter {
	return &Adapter{parser: parser}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be OpenAPI.
func (a *Adapter) Detect(src schema.Source, raw []byte) bool {
	switch schema.ExtensionOf(src) {
	case "", ".yaml", ".yml", ".json":
	default:
		return false
	}
	return detectOpenAPI(raw)
}

// Parse converts the document through the configured parser.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) (model.Document, error) {
	if a == nil || a.parser == nil {
		return model.Document{}, errors.New("openapi adapter: parser is nil")
	}
	out, err := a.parser.Parse(ctx, doc.Raw())
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return out, nil
}

func detectOpenAPI(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	_, openapi := probe["openapi"]
	_, swagger := probe["swagger"]
	return openapi || swagger
}
