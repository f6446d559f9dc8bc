package parser

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// kin-openapi decodes properties and component schemas into Go maps, so the
// declared order is recorded beforehand as vendor extensions next to them.
const (
	propertyOrderKey = "x-docgen-order-properties"
	schemaOrderKey   = "x-docgen-order-schemas"
)

// nameMaps hold user-chosen names as keys rather than keywords.
var nameMaps = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"schemas":           true,
	"paths":             true,
	"responses":         true,
	"parameters":        true,
	"requestBodies":     true,
	"headers":           true,
	"securitySchemes":   true,
	"content":           true,
	"callbacks":         true,
	"links":             true,
}

// literalKeys hold data, not schemas.
var literalKeys = map[string]bool{
	"example":  true,
	"examples": true,
	"default":  true,
	"enum":     true,
	"const":    true,
}

// recordOrder returns raw with order extensions added. Payloads that do not
// parse are returned untouched so the loader reports the error.
func recordOrder(raw []byte) []byte {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil || len(root.Content) == 0 {
		return raw
	}
	annotate(root.Content[0], "")
	out, err := yaml.Marshal(&root)
	if err != nil {
		return raw
	}
	return out
}

// annotate walks a keyword mapping. parent is the key n was found under.
func annotate(n *yaml.Node, parent string) {
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			annotate(item, parent)
		}
	case yaml.MappingNode:
		var extra []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if literalKeys[key] || strings.HasPrefix(key, "x-") {
				continue
			}
			if !nameMaps[key] || val.Kind != yaml.MappingNode {
				annotate(val, key)
				continue
			}
			switch {
			case key == "properties":
				extra = append(extra, orderEntry(propertyOrderKey, val)...)
			case key == "schemas" && parent == "components":
				extra = append(extra, orderEntry(schemaOrderKey, val)...)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				annotate(val.Content[j+1], key)
			}
		}
		n.Content = append(n.Content, extra...)
	}
}

func orderEntry(key string, mapping *yaml.Node) []*yaml.Node {
	names := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		names.Content = append(names.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Value: mapping.Content[i].Value,
		})
	}
	return []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, names}
}

// declaredOrder lists the names of items in the order recorded under key,
// followed by any unrecorded names sorted.
func declaredOrder[V any](ext map[string]any, key string, items map[string]V) []string {
	recorded, _ := ext[key].([]any)
	out := make([]string, 0, len(items))
	for _, entry := range recorded {
		name, _ := entry.(string)
		if _, ok := items[name]; ok && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range items {
		if !slices.Contains(out, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
