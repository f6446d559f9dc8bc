package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Transformer mutates a parsed Document before decorators run.
// Implementations can rename groups, inject comments or perform arbitrary
// rewrites.
type Transformer interface {
	Transform(ctx context.Context, doc *model.Document) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *model.Document) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *model.Document) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// ChainTransformers runs the given transformers in order and stops at the
// first error.
func ChainTransformers(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, doc *model.Document) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document:
//
//	title: Biblioteca
//	models:
//	  libro:
//	    comment: Represents a book.
//	    attributes:
//	      titulo: {label: Titulo del libro, comment: Book title.}
//	      autor.nombre: {example: Borges}
//	routes:
//	  post /libros:
//	    name: Crear libro
//	    group: Libros
//	    permissions: [admin]
//
// Attribute paths are dot separated and step through array elements. Route
// keys are "<method> <path>"; a bare path matches the get route.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	Version     string                `yaml:"version"`
	Models      map[string]modelPatch `yaml:"models"`
	Routes      map[string]routePatch `yaml:"routes"`
}

type modelPatch struct {
	Comment    string                    `yaml:"comment"`
	Attributes map[string]attributePatch `yaml:"attributes"`
}

type attributePatch struct {
	Comment string `yaml:"comment"`
	Label   string `yaml:"label"`
	Example any    `yaml:"example"`
}

type routePatch struct {
	Name        string   `yaml:"name"`
	Group       string   `yaml:"group"`
	Description string   `yaml:"description"`
	Version     int      `yaml:"version"`
	Permissions []string `yaml:"permissions"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto doc. Patches that name an
// unknown model, attribute or route are errors. Attribute trees are copied
// before being patched so callers sharing them are not affected.
func (t *PresetTransformer) Transform(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return errors.New("preset transformer: document is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		doc.Title = t.document.Title
	}
	if t.document.Description != "" {
		doc.Description = t.document.Description
	}
	if t.document.Version != "" {
		doc.Version = t.document.Version
	}

	if len(t.document.Models) > 0 {
		doc.Models = slices.Clone(doc.Models)
	}
	for _, name := range sortedPatchKeys(t.document.Models) {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := slices.IndexFunc(doc.Models, func(m model.ModelDescriptor) bool { return m.Name == name })
		if idx < 0 {
			return fmt.Errorf("preset transformer: model %q not found", name)
		}
		if err := applyModelPatch(&doc.Models[idx], t.document.Models[name]); err != nil {
			return err
		}
	}

	if len(t.document.Routes) > 0 {
		doc.Routes = slices.Clone(doc.Routes)
	}
	for _, key := range sortedPatchKeys(t.document.Routes) {
		method, path := splitRouteKey(key)
		idx := slices.IndexFunc(doc.Routes, func(r model.RouteDescriptor) bool {
			return routeMethod(r.Method) == method && r.Path == path
		})
		if idx < 0 {
			return fmt.Errorf("preset transformer: route %q not found", key)
		}
		applyRoutePatch(&doc.Routes[idx], t.document.Routes[key])
	}
	return nil
}

func applyModelPatch(m *model.ModelDescriptor, patch modelPatch) error {
	if patch.Comment != "" {
		m.Comment = patch.Comment
	}
	for _, path := range sortedPatchKeys(patch.Attributes) {
		segments := strings.Split(path, ".")
		node, ok := patchNode(m.Attributes, segments, patch.Attributes[path])
		if !ok {
			return fmt.Errorf("preset transformer: attribute %q not found in model %q", path, m.Name)
		}
		m.Attributes = node.(model.Object)
	}
	return nil
}

// patchNode returns a copy of node with the leaf at segments patched.
func patchNode(node model.FieldNode, segments []string, patch attributePatch) (model.FieldNode, bool) {
	switch n := node.(type) {
	case model.ArrayOf:
		element, ok := patchNode(n.Element, segments, patch)
		if !ok {
			return node, false
		}
		return model.ArrayOf{Element: element}, true
	case model.Object:
		if len(segments) == 0 {
			return node, false
		}
		for i, prop := range n {
			if prop.Name != segments[0] {
				continue
			}
			var (
				child model.FieldNode
				ok    bool
			)
			if len(segments) == 1 {
				child, ok = patchLeaf(prop.Node, patch)
			} else {
				child, ok = patchNode(prop.Node, segments[1:], patch)
			}
			if !ok {
				return node, false
			}
			out := slices.Clone(n)
			out[i].Node = child
			return out, true
		}
	}
	return node, false
}

func patchLeaf(node model.FieldNode, patch attributePatch) (model.FieldNode, bool) {
	field, ok := node.(model.FieldDescriptor)
	if !ok {
		return node, false
	}
	if patch.Comment != "" {
		field.Comment = patch.Comment
	}
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Example != nil {
		field.Example = patch.Example
	}
	return field, true
}

func applyRoutePatch(route *model.RouteDescriptor, patch routePatch) {
	if patch.Name != "" {
		route.Name = patch.Name
	}
	if patch.Group != "" {
		route.Group = patch.Group
	}
	if patch.Description != "" {
		route.Description = patch.Description
	}
	if patch.Version > 0 {
		route.Version = patch.Version
	}
	if patch.Permissions != nil {
		route.Permissions = slices.Clone(patch.Permissions)
	}
}

func splitRouteKey(key string) (string, string) {
	fields := strings.Fields(key)
	switch len(fields) {
	case 0:
		return "get", ""
	case 1:
		return "get", fields[0]
	default:
		return routeMethod(fields[0]), fields[1]
	}
}

func routeMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return "get"
	}
	return method
}

func sortedPatchKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
