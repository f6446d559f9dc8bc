package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Declaration order of properties, $defs and definitions is carried through
// ref resolution, which works on unordered maps, as a vendor key next to
// the mapping: "properties" gets "x-docgen-order-properties". Vendor keys
// survive cloning and ref merging.
const orderKeyPrefix = "x-docgen-order-"

var orderedSections = map[string]bool{
	"properties":  true,
	"$defs":       true,
	"definitions": true,
}

func orderKey(section string) string {
	return orderKeyPrefix + section
}

// parsePayload decodes JSON or YAML into nested maps, recording the order of
// ordered sections.
func parsePayload(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("raw schema is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	value, err := nodeToAny(&root)
	if err != nil {
		return nil, err
	}
	payload, ok := value.(map[string]any)
	if !ok || payload == nil {
		return nil, errors.New("schema must be an object")
	}
	return payload, nil
}

func nodeToAny(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeToAny(node.Content[0])
	case yaml.AliasNode:
		return nodeToAny(node.Alias)
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			value, err := nodeToAny(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[key] = value
			if orderedSections[key] && node.Content[i+1].Kind == yaml.MappingNode {
				out[orderKey(key)] = mappingKeys(node.Content[i+1])
			}
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := nodeToAny(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return value, nil
	}
}

func mappingKeys(node *yaml.Node) []any {
	keys := make([]any, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

var supportedDialects = map[string]struct{}{
	"https://json-schema.org/draft/2020-12/schema": {},
	"http://json-schema.org/draft/2020-12/schema":  {},
	"https://json-schema.org/draft/2019-09/schema": {},
	"http://json-schema.org/draft/2019-09/schema":  {},
	"https://json-schema.org/draft-07/schema":      {},
	"http://json-schema.org/draft-07/schema":       {},
}

// validateDialect accepts a missing $schema as the latest draft.
func validateDialect(payload map[string]any) error {
	value := strings.TrimSuffix(strings.TrimSpace(readString(payload, "$schema")), "#")
	if value == "" {
		return nil
	}
	if _, ok := supportedDialects[value]; !ok {
		return fmt.Errorf("unsupported $schema %q", value)
	}
	return nil
}

func readString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, _ := payload[key].(string)
	return value
}
