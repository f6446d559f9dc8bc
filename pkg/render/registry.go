package render

import (
	"fmt"

	"github.com/goliatone/go-docgen/internal/registry"
)

// Registry maps renderer names to renderers. Names are case sensitive. It is
// safe for concurrent use.
type Registry struct {
	set *registry.Set[Renderer]
}

func NewRegistry() *Registry {
	return &Registry{set: registry.New[Renderer]("renderer", false)}
}

// Register adds renderer under its Name.
func (r *Registry) Register(renderer Renderer) error {
	if err := r.set.Add(renderer); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (Renderer, error) {
	renderer, ok := r.set.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

func (r *Registry) MustGet(name string) Renderer {
	renderer, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return renderer
}

// List returns renderer names in alphabetical order.
func (r *Registry) List() []string { return r.set.Names() }

func (r *Registry) Has(name string) bool {
	_, ok := r.set.Lookup(name)
	return ok
}

// Describe pairs every renderer name with its content type, ordered by name.
func (r *Registry) Describe() [][2]string {
	names := r.set.Names()
	out := make([][2]string, 0, len(names))
	for _, name := range names {
		renderer, _ := r.set.Lookup(name)
		out = append(out, [2]string{name, renderer.ContentType()})
	}
	return out
}
