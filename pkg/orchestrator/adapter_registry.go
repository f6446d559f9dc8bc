package orchestrator

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/internal/registry"
	"github.com/goliatone/go-docgen/pkg/schema"
)

type FormatAdapter = schema.FormatAdapter

// AdapterRegistry keys format adapters by lower-cased name and probes them
// in the order they were registered.
type AdapterRegistry struct {
	set *registry.Set[schema.FormatAdapter]
}

func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{set: registry.New[schema.FormatAdapter]("adapter", true)}
}

func (r *AdapterRegistry) Register(adapter schema.FormatAdapter) error {
	if err := r.set.Add(adapter); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	return nil
}

func (r *AdapterRegistry) MustRegister(adapter schema.FormatAdapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Get looks name up ignoring case and surrounding space. The error for an
// unknown format lists the known ones.
func (r *AdapterRegistry) Get(name string) (schema.FormatAdapter, error) {
	key := r.set.Key(name)
	if key == "" {
		return nil, fmt.Errorf("orchestrator: adapter name is required")
	}
	adapter, ok := r.set.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("orchestrator: format %q not supported (known: %s)", key, strings.Join(r.set.Names(), ", "))
	}
	return adapter, nil
}

func (r *AdapterRegistry) List() []string { return r.set.Names() }

func (r *AdapterRegistry) Has(name string) bool {
	_, ok := r.set.Lookup(name)
	return ok
}

// Detect returns, in registration order, every adapter that claims the
// payload.
func (r *AdapterRegistry) Detect(src schema.Source, raw []byte) []schema.FormatAdapter {
	if r == nil {
		return nil
	}
	var matches []schema.FormatAdapter
	for _, adapter := range r.set.Ordered() {
		if adapter.Detect(src, raw) {
			matches = append(matches, adapter)
		}
	}
	return matches
}
