package descriptor

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Encode writes doc in the descriptor format. Controllers and custom
// validator functions have no textual form and are omitted.
func Encode(doc model.Document) ([]byte, error) {
	root := mapping()
	addString(root, "title", doc.Title)
	addString(root, "description", doc.Description)
	addString(root, "version", doc.Version)

	if len(doc.Models) > 0 {
		models := mapping()
		for _, m := range doc.Models {
			node, err := modelNode(m)
			if err != nil {
				return nil, fmt.Errorf("descriptor: model %q: %w", m.Name, err)
			}
			add(models, m.Name, node)
		}
		add(root, "models", models)
	}

	if len(doc.Routes) > 0 {
		routes := &yaml.Node{Kind: yaml.SequenceNode}
		for _, r := range doc.Routes {
			node, err := routeNode(r)
			if err != nil {
				return nil, fmt.Errorf("descriptor: route %s %s: %w", r.Method, r.Path, err)
			}
			routes.Content = append(routes.Content, node)
		}
		add(root, "routes", routes)
	}

	return marshal(root)
}

// EncodeModel writes a single-model descriptor.
func EncodeModel(m model.ModelDescriptor) ([]byte, error) {
	return Encode(model.Document{Models: []model.ModelDescriptor{m}})
}

func marshal(root *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("descriptor: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("descriptor: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func modelNode(m model.ModelDescriptor) (*yaml.Node, error) {
	out := mapping()
	addString(out, "comment", m.Comment)
	if len(m.Attributes) > 0 {
		attrs, err := treeNode(m.Attributes)
		if err != nil {
			return nil, err
		}
		add(out, "attributes", attrs)
	}
	return out, nil
}

func routeNode(r model.RouteDescriptor) (*yaml.Node, error) {
	out := mapping()
	addString(out, "method", r.Method)
	addString(out, "path", r.Path)
	addString(out, "name", r.Name)
	addString(out, "group", r.Group)
	addString(out, "description", r.Description)
	if r.Version != 0 {
		add(out, "version", scalar("!!int", strconv.Itoa(r.Version)))
	}
	if len(r.Permissions) > 0 {
		add(out, "permissions", stringsNode(r.Permissions))
	}

	input := mapping()
	for _, section := range []struct {
		name string
		node model.FieldNode
	}{
		{"headers", r.Input.Headers},
		{"params", r.Input.Params},
		{"query", r.Input.Query},
		{"body", r.Input.Body},
	} {
		if model.IsEmpty(section.node) {
			continue
		}
		node, err := treeNode(section.node)
		if err != nil {
			return nil, err
		}
		add(input, section.name, node)
	}
	if len(input.Content) > 0 {
		add(out, "input", input)
	}

	if !model.IsEmpty(r.Output) {
		node, err := treeNode(r.Output)
		if err != nil {
			return nil, err
		}
		add(out, "output", node)
	}

	for _, ex := range []struct {
		key   string
		items []model.Example
	}{
		{"inputExamples", r.InputExamples},
		{"outputExamples", r.OutputExamples},
	} {
		if len(ex.items) == 0 {
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range ex.items {
			entry := mapping()
			addString(entry, "title", item.Title)
			data, err := valueNode(item.Data)
			if err != nil {
				return nil, err
			}
			add(entry, "data", data)
			seq.Content = append(seq.Content, entry)
		}
		add(out, ex.key, seq)
	}
	return out, nil
}

func treeNode(node model.FieldNode) (*yaml.Node, error) {
	switch n := node.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case model.FieldDescriptor:
		return fieldNode(n)
	case model.ArrayOf:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		if n.Element != nil {
			elem, err := treeNode(n.Element)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, elem)
		}
		return seq, nil
	case model.Object:
		out := mapping()
		for _, p := range n {
			child, err := treeNode(p.Node)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.Name, err)
			}
			add(out, p.Name, child)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported node %T", node)
	}
}

func fieldNode(f model.FieldDescriptor) (*yaml.Node, error) {
	out := mapping()
	addString(out, "type", string(f.Kind))
	if f.ElementKind != "" {
		addString(out, "elementType", string(f.ElementKind))
	}
	if f.Nullable != nil {
		add(out, "allowNull", boolNode(*f.Nullable))
	}
	for _, v := range []struct {
		key   string
		value any
	}{
		{"defaultValue", f.Default},
		{"example", f.Example},
	} {
		if v.value == nil {
			continue
		}
		node, err := valueNode(v.value)
		if err != nil {
			return nil, err
		}
		add(out, v.key, node)
	}
	addString(out, "comment", f.Comment)
	addString(out, "label", f.Label)
	if len(f.EnumValues) > 0 {
		add(out, "values", stringsNode(f.EnumValues))
	}

	validate := mapping()
	for _, rule := range f.Validate {
		if rule.IsCustom() {
			continue
		}
		args := rule.Args
		if args == nil {
			args = true
		}
		node, err := valueNode(args)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		add(validate, rule.Name, node)
	}
	if len(validate.Content) > 0 {
		add(out, "validate", validate)
	}

	if f.PrimaryKey {
		add(out, "primaryKey", boolNode(true))
	}
	if f.ForeignKey {
		add(out, "foreignKey", boolNode(true))
	}
	return out, nil
}

// valueNode renders a plain Go value, keeping ordered map key order and
// sorting the keys of plain maps.
func valueNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		out := mapping()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			child, err := valueNode(pair.Value)
			if err != nil {
				return nil, err
			}
			add(out, pair.Key, child)
		}
		return out, nil
	case map[string]any:
		out := mapping()
		for _, key := range sortedKeys(val) {
			child, err := valueNode(val[key])
			if err != nil {
				return nil, err
			}
			add(out, key, child)
		}
		return out, nil
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range val {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, child)
		}
		return out, nil
	default:
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return &node, nil
	}
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func boolNode(b bool) *yaml.Node {
	return scalar("!!bool", strconv.FormatBool(b))
}

func stringsNode(values []string) *yaml.Node {
	out := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		out.Content = append(out.Content, scalar("!!str", v))
	}
	return out
}

func add(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar("!!str", key), value)
}

func addString(m *yaml.Node, key, value string) {
	if value == "" {
		return
	}
	add(m, key, scalar("!!str", value))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
