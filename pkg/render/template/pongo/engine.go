// Package pongo implements template.TemplateRenderer on top of pongo2.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-docgen/pkg/render/template"
)

const defaultExtension = ".tpl"

// Option configures the engine before construction.
type Option func(*settings)

type settings struct {
	dir     string
	files   fs.FS
	ext     string
	helpers map[string]any
	globals map[string]any
}

// WithBaseDir loads templates from a directory on disk. Disk templates take
// precedence over WithFS templates with the same name.
func WithBaseDir(dir string) Option {
	return func(s *settings) { s.dir = strings.TrimSpace(dir) }
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(s *settings) { s.files = files }
}

// WithExtension overrides the ".tpl" suffix appended to template names.
func WithExtension(ext string) Option {
	return func(s *settings) {
		if ext = strings.TrimSpace(ext); ext != "" {
			s.ext = "." + strings.TrimPrefix(ext, ".")
		}
	}
}

// WithTemplateFunc registers helpers. pongo2.FilterFunction values become
// filters, any other function becomes a global callable from templates.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(s *settings) { mergeInto(&s.helpers, funcs) }
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(s *settings) { mergeInto(&s.globals, data) }
}

func mergeInto(dst *map[string]any, src map[string]any) {
	for name, v := range src {
		if *dst == nil {
			*dst = make(map[string]any, len(src))
		}
		(*dst)[strings.TrimSpace(name)] = v
	}
}

// Engine executes templates from a pongo2 template set. Compiled templates
// are cached by the set.
type Engine struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet
	ext string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. At least one template source is required.
func New(options ...Option) (*Engine, error) {
	s := settings{ext: defaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}

	var loaders []pongo2.TemplateLoader
	if s.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(s.dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: templates dir %q: %w", s.dir, err)
		}
		loaders = append(loaders, local)
	}
	if s.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(s.files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("pongo: a templates dir or fs.FS is required")
	}

	e := &Engine{set: pongo2.NewSet("docgen", loaders...), ext: s.ext}
	e.set.Globals = pongo2.Context{}
	registerDefaultFilters()

	if err := e.GlobalContext(s.globals); err != nil {
		return nil, fmt.Errorf("pongo: global data: %w", err)
	}
	for name, fn := range s.helpers {
		if err := e.addHelper(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: helper %q: %w", name, err)
		}
	}
	return e, nil
}

// Render treats name as inline content when it contains template tags.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes a named template, appending the configured
// extension when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("pongo: load %q: %w", name, err)
	}
	return e.execute(tpl, data, name, out)
}

// RenderString compiles and executes inline template content.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	tpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return e.execute(tpl, data, "inline template", out)
}

func (e *Engine) execute(tpl *pongo2.Template, data any, label string, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s data: %w", label, err)
	}

	e.mu.RLock()
	rendered, err := tpl.Execute(ctx)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", label, err)
	}

	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter registers a filter. pongo2 filters are process wide, so
// registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("pongo: engine is nil")
	}
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.set.Globals.Update(ctx)
	e.mu.Unlock()
	return nil
}

func (e *Engine) addHelper(name string, fn any) error {
	if name == "" || fn == nil {
		return nil
	}
	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(name) {
			return nil
		}
		return pongo2.RegisterFilter(name, filter)
	}
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("unsupported helper type %T", fn)
	}

	e.mu.Lock()
	e.set.Globals[name] = fn
	e.mu.Unlock()
	return nil
}

// toContext turns data into a pongo2 context. Values that are not plain
// maps, slices or scalars go through JSON so templates see json field names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	plain, err := plainValue(data)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must be an object, got %T", data)
	}

	ctx := make(pongo2.Context, len(m))
	for key, v := range m {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = v
		}
	}
	return ctx, nil
}

func plainValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int64, float64:
		return val, nil
	case pongo2.Context:
		return plainMap(val)
	case map[string]any:
		return plainMap(val)
	case []any:
		return plainSlice(val)
	case []map[string]any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = item
		}
		return plainSlice(items)
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func plainMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, v := range in {
		converted, err := plainValue(v)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func plainSlice(in []any) ([]any, error) {
	out := make([]any, len(in))
	for i, v := range in {
		converted, err := plainValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
