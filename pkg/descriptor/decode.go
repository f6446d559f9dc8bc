package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
)

var (
	// ErrUnresolvedRef is returned when a $ref path matches no field.
	ErrUnresolvedRef = errors.New("unresolved $ref")
	// ErrRefCycle is returned when $ref chains loop back on themselves.
	ErrRefCycle = errors.New("$ref cycle")
)

const refKey = "$ref"

// Decode parses a YAML or JSON descriptor into a document.
func Decode(raw []byte) (model.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return model.Document{}, fmt.Errorf("descriptor: parse: %w", err)
	}
	top := unwrap(&root)
	if top == nil || top.Kind != yaml.MappingNode {
		return model.Document{}, errors.New("descriptor: top level must be a mapping")
	}

	d := &decoder{index: buildIndex(top), resolving: map[string]bool{}}
	doc, err := d.document(top)
	if err != nil {
		return model.Document{}, fmt.Errorf("descriptor: %w", err)
	}
	return doc, nil
}

type decoder struct {
	index     map[string]any
	resolving map[string]bool
}

func (d *decoder) document(top *yaml.Node) (model.Document, error) {
	var doc model.Document
	err := eachPair(top, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "title":
			doc.Title, err = scalarString(val)
		case "description":
			doc.Description, err = scalarString(val)
		case "version":
			doc.Version, err = scalarString(val)
		case "models":
			doc.Models, err = d.models(val)
		case "routes":
			doc.Routes, err = d.routes(val)
		}
		return err
	})
	return doc, err
}

func (d *decoder) models(n *yaml.Node) ([]model.ModelDescriptor, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, lineError(n, "models must be a mapping of model names")
	}

	var out []model.ModelDescriptor
	err := eachPair(n, func(name string, val *yaml.Node) error {
		m := model.ModelDescriptor{Name: name}
		if val.Kind != yaml.MappingNode {
			return lineError(val, "model %q must be a mapping", name)
		}
		err := eachPair(val, func(key string, v *yaml.Node) error {
			switch key {
			case "comment":
				c, err := scalarString(v)
				m.Comment = c
				return err
			case "attributes":
				node, err := d.node(v)
				if err != nil {
					return fmt.Errorf("model %q: %w", name, err)
				}
				obj, ok := node.(model.Object)
				if node != nil && !ok {
					return lineError(v, "model %q attributes must be a mapping", name)
				}
				m.Attributes = obj
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (d *decoder) routes(n *yaml.Node) ([]model.RouteDescriptor, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, lineError(n, "routes must be a sequence")
	}

	out := make([]model.RouteDescriptor, 0, len(n.Content))
	for _, item := range n.Content {
		route, err := d.route(unwrap(item))
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}

func (d *decoder) route(n *yaml.Node) (model.RouteDescriptor, error) {
	var r model.RouteDescriptor
	if n == nil || n.Kind != yaml.MappingNode {
		return r, lineError(n, "route must be a mapping")
	}

	err := eachPair(n, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "method":
			r.Method, err = scalarString(val)
		case "path":
			r.Path, err = scalarString(val)
		case "name":
			r.Name, err = scalarString(val)
		case "group":
			r.Group, err = scalarString(val)
		case "description":
			r.Description, err = scalarString(val)
		case "version":
			err = val.Decode(&r.Version)
		case "permissions":
			r.Permissions, err = stringList(val)
		case "input":
			r.Input, err = d.input(val)
		case "output":
			r.Output, err = d.node(val)
		case "inputExamples":
			r.InputExamples, err = examples(val)
		case "outputExamples":
			r.OutputExamples, err = examples(val)
		}
		return err
	})
	if err != nil {
		return r, fmt.Errorf("route %s %s: %w", r.Method, r.Path, err)
	}
	return r, nil
}

func (d *decoder) input(n *yaml.Node) (model.Input, error) {
	var in model.Input
	if isNull(n) {
		return in, nil
	}
	if n.Kind != yaml.MappingNode {
		return in, lineError(n, "input must be a mapping")
	}
	err := eachPair(n, func(key string, val *yaml.Node) error {
		node, err := d.node(val)
		if err != nil {
			return fmt.Errorf("input %s: %w", key, err)
		}
		switch key {
		case "headers":
			in.Headers = node
		case "params":
			in.Params = node
		case "query":
			in.Query = node
		case "body":
			in.Body = node
		default:
			return lineError(val, "unknown input section %q", key)
		}
		return nil
	})
	return in, err
}

// node decodes a field tree. Null values decode to nil, which marks an
// undefined property.
func (d *decoder) node(n *yaml.Node) (model.FieldNode, error) {
	n = unwrap(n)
	if isNull(n) {
		return nil, nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		kind, elem := parseType(n.Value)
		return model.FieldDescriptor{Kind: kind, ElementKind: elem}, nil
	case yaml.SequenceNode:
		switch len(n.Content) {
		case 0:
			return model.ArrayOf{}, nil
		case 1:
			elem, err := d.node(n.Content[0])
			if err != nil {
				return nil, err
			}
			return model.ArrayOf{Element: elem}, nil
		default:
			return nil, lineError(n, "lists take a single element describing each item")
		}
	case yaml.MappingNode:
		if isLeaf(n) {
			return d.field(n)
		}
		obj := model.Object{}
		err := eachPair(n, func(key string, val *yaml.Node) error {
			child, err := d.node(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			obj = append(obj, model.Prop(key, child))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, lineError(n, "unexpected node")
	}
}

func (d *decoder) field(n *yaml.Node) (model.FieldDescriptor, error) {
	var f model.FieldDescriptor
	if ref := valueOf(n, refKey); ref != nil {
		base, err := d.resolve(ref)
		if err != nil {
			return f, err
		}
		f = base
	}

	err := eachPair(n, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "type", "kind":
			kind, elem := parseType(val.Value)
			f.Kind = kind
			if elem != "" {
				f.ElementKind = elem
			}
		case "elementType", "items":
			f.ElementKind = model.ParseKind(val.Value)
		case "allowNull", "nullable":
			var b bool
			err = val.Decode(&b)
			f.Nullable = model.Bool(b)
		case "defaultValue", "default":
			f.Default, err = nodeValue(val)
		case "example":
			f.Example, err = nodeValue(val)
		case "comment":
			f.Comment, err = scalarString(val)
		case "label", "xlabel":
			f.Label, err = scalarString(val)
		case "values", "enum":
			f.EnumValues, err = stringList(val)
		case "validate":
			f.Validate, err = rules(val)
		case "primaryKey":
			err = val.Decode(&f.PrimaryKey)
		case "foreignKey":
			err = val.Decode(&f.ForeignKey)
		case "references":
			f.ForeignKey = !isNull(val)
		}
		return err
	})
	return f, err
}

func (d *decoder) resolve(ref *yaml.Node) (model.FieldDescriptor, error) {
	path := ref.Value
	if d.resolving[path] {
		return model.FieldDescriptor{}, fmt.Errorf("%w: %s", ErrRefCycle, path)
	}
	d.resolving[path] = true
	defer delete(d.resolving, path)

	x, err := jp.ParseString(path)
	if err != nil {
		return model.FieldDescriptor{}, lineError(ref, "invalid $ref %q: %v", path, err)
	}
	for _, match := range x.Get(d.index) {
		target, ok := match.(*yaml.Node)
		if !ok {
			continue
		}
		node, err := d.node(target)
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		if field, ok := node.(model.FieldDescriptor); ok {
			return field, nil
		}
	}
	return model.FieldDescriptor{}, fmt.Errorf("%w: %s (line %d)", ErrUnresolvedRef, path, ref.Line)
}

// buildIndex mirrors the descriptor as plain maps and slices so JSONPath
// expressions can walk it. Fields stay as their yaml nodes.
func buildIndex(top *yaml.Node) map[string]any {
	index := map[string]any{}
	_ = eachPair(top, func(key string, val *yaml.Node) error {
		switch key {
		case "models", "routes":
			index[key] = indexNode(val)
		}
		return nil
	})
	return index
}

func indexNode(n *yaml.Node) any {
	n = unwrap(n)
	switch {
	case n == nil:
		return nil
	case n.Kind == yaml.MappingNode && !isLeaf(n):
		out := make(map[string]any, len(n.Content)/2)
		_ = eachPair(n, func(key string, val *yaml.Node) error {
			out[key] = indexNode(val)
			return nil
		})
		return out
	case n.Kind == yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, indexNode(item))
		}
		return out
	default:
		return n
	}
}

func rules(n *yaml.Node) ([]model.ValidationRule, error) {
	if isNull(n) {
		return nil, nil
	}

	var out []model.ValidationRule
	add := func(name string, val *yaml.Node) error {
		if args := valueOf(val, "args"); args != nil {
			val = args
		}
		raw, err := nodeValue(val)
		if err != nil {
			return err
		}
		out = append(out, model.NormalizeRule(name, raw))
		return nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		if err := eachPair(n, add); err != nil {
			return nil, err
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			item = unwrap(item)
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, model.NormalizeRule(item.Value, true))
			case yaml.MappingNode:
				if err := eachPair(item, add); err != nil {
					return nil, err
				}
			default:
				return nil, lineError(item, "validate entries must be names or mappings")
			}
		}
	default:
		return nil, lineError(n, "validate must be a mapping or a sequence")
	}
	return out, nil
}

func examples(n *yaml.Node) ([]model.Example, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, lineError(n, "examples must be a sequence")
	}

	out := make([]model.Example, 0, len(n.Content))
	for _, item := range n.Content {
		item = unwrap(item)
		var ex model.Example
		err := eachPair(item, func(key string, val *yaml.Node) error {
			var err error
			switch key {
			case "title":
				ex.Title, err = scalarString(val)
			case "data":
				ex.Data, err = nodeValue(val)
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

// nodeValue converts a yaml node into plain Go values. Mappings become
// ordered maps so example payloads keep their declared key order.
func nodeValue(n *yaml.Node) (any, error) {
	n = unwrap(n)
	switch {
	case isNull(n):
		return nil, nil
	case n.Kind == yaml.MappingNode:
		om := orderedmap.New[string, any]()
		err := eachPair(n, func(key string, val *yaml.Node) error {
			v, err := nodeValue(val)
			if err != nil {
				return err
			}
			om.Set(key, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return om, nil
	case n.Kind == yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, lineError(n, "%v", err)
		}
		return v, nil
	}
}

// parseType splits the ARRAY(ELEMENT) shorthand.
func parseType(raw string) (model.FieldKind, model.FieldKind) {
	head, rest, ok := strings.Cut(raw, "(")
	if !ok {
		return model.ParseKind(raw), ""
	}
	return model.ParseKind(head), model.ParseKind(strings.TrimSuffix(strings.TrimSpace(rest), ")"))
}

// fieldKeys are the keys a leaf mapping may carry; true marks keys whose
// value must be a scalar. A mapping with any other key, or with a non-scalar
// where a scalar belongs, is an object even when one of its properties is
// called type or kind.
var fieldKeys = map[string]bool{
	"type": true, "kind": true, "elementType": true, "items": true,
	"allowNull": true, "nullable": true, "comment": true, "label": true,
	"xlabel": true, "primaryKey": true, "foreignKey": true, refKey: true,
	"default": false, "defaultValue": false, "example": false,
	"values": false, "enum": false, "validate": false, "references": false,
}

func isLeaf(n *yaml.Node) bool {
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	typed := false
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		scalar, known := fieldKeys[key]
		if !known {
			return false
		}
		if scalar && unwrap(n.Content[i+1]).Kind != yaml.ScalarNode {
			return false
		}
		if key == "type" || key == "kind" || key == refKey {
			typed = true
		}
	}
	return typed
}

func valueOf(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return unwrap(n.Content[i+1])
		}
	}
	return nil
}

func eachPair(n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if n == nil || n.Kind != yaml.MappingNode {
		return lineError(n, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, unwrap(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func scalarString(n *yaml.Node) (string, error) {
	if isNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", lineError(n, "expected a scalar")
	}
	return n.Value, nil
}

func stringList(n *yaml.Node) ([]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, lineError(n, "expected a list of strings")
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := scalarString(unwrap(item))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func lineError(n *yaml.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if n == nil {
		return errors.New(msg)
	}
	return fmt.Errorf("line %d: %s", n.Line, msg)
}
