package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/schema"
)

// DefaultAdapterName identifies the adapter in the registry.
const DefaultAdapterName = "jsonschema"

// Adapter wraps ref resolution and conversion behind schema.FormatAdapter.
type Adapter struct {
	resolver *Resolver
}

// AdapterOption configures a JSON Schema adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	resolver       *Resolver
	resolverConfig ResolveOptions
}

// WithResolver injects a custom resolver implementation.
func WithResolver(resolver *Resolver) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolver = resolver
	}
}

// WithResolverOptions supplies options to the default resolver.
func WithResolverOptions(options ResolveOptions) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolverConfig = options
	}
}

// NewAdapter constructs a JSON Schema adapter. loader fetches the documents
// that external $ref values point to; it may be nil when every reference is
// local.
func NewAdapter(loader schema.Loader, options ...AdapterOption) *Adapter {
	opts := adapterOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	resolver := opts.resolver
	if resolver == nil {
		resolver = NewResolver(loader, opts.resolverConfig)
	}
	return &Adapter{resolver: resolver}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the payload looks like a JSON Schema: a mapping
// carrying $schema, $defs, definitions or root properties, and none of the
// keys that mark OpenAPI or descriptor documents.
func (a *Adapter) Detect(src schema.Source, raw []byte) bool {
	switch schema.ExtensionOf(src) {
	case "", ".json", ".yaml", ".yml":
	default:
		return false
	}

	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return false
	}
	for _, key := range []string{"openapi", "swagger", "models", "routes"} {
		if _, ok := probe[key]; ok {
			return false
		}
	}
	for _, key := range []string{"$schema", "$defs", "definitions", "properties"} {
		if _, ok := probe[key]; ok {
			return true
		}
	}
	return false
}

// Parse resolves references and converts the schemas into models.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) (model.Document, error) {
	if a == nil || a.resolver == nil {
		return model.Document{}, errors.New("jsonschema adapter: resolver is nil")
	}
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}

	payload, err := parsePayload(doc.Raw())
	if err != nil {
		return model.Document{}, fmt.Errorf("jsonschema adapter: %s: %w", doc.Location(), err)
	}
	if err := validateDialect(payload); err != nil {
		return model.Document{}, fmt.Errorf("jsonschema adapter: %s: %w", doc.Location(), err)
	}

	resolved, err := a.resolver.Resolve(ctx, doc, payload)
	if err != nil {
		return model.Document{}, fmt.Errorf("jsonschema adapter: %s: %w", doc.Location(), err)
	}

	out, err := convertDocument(resolved, rootModelName(doc))
	if err != nil {
		return model.Document{}, fmt.Errorf("jsonschema adapter: %s: %w", doc.Location(), err)
	}
	return out, nil
}

// rootModelName derives a fallback model name from the document location:
// "schemas/libro.schema.json" becomes "libro".
func rootModelName(doc schema.Document) string {
	location := doc.Location()
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if i := strings.LastIndexAny(location, `/\`); i >= 0 {
		location = location[i+1:]
	}
	if i := strings.Index(location, "."); i > 0 {
		location = location[:i]
	}
	return location
}
