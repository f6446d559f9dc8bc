package model

import (
	"bytes"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

// ExampleDate is the fixed timestamp used for DATE placeholders.
const ExampleDate = "2018-02-03T00:39:45.113Z"

// ExamplePrefix starts every line of an embedded example.
const ExamplePrefix = "* "

// ExampleValue returns the literal used for a field in synthesized examples:
// the declared example, else the default, else a placeholder for the kind.
// Defaults count when defined, so 0 and false are used as-is.
func ExampleValue(field pkgmodel.FieldDescriptor) any {
	if field.Example != nil {
		return field.Example
	}
	if field.HasDefault() {
		return field.Default
	}
	return placeholder(field)
}

func placeholder(field pkgmodel.FieldDescriptor) any {
	switch field.Kind {
	case pkgmodel.KindString:
		return "text"
	case pkgmodel.KindText:
		return "text block"
	case pkgmodel.KindInteger:
		return 1
	case pkgmodel.KindFloat:
		return 12.99
	case pkgmodel.KindBoolean:
		return false
	case pkgmodel.KindEnum:
		if len(field.EnumValues) == 0 {
			return "example"
		}
		return field.EnumValues[0]
	case pkgmodel.KindJSON:
		return map[string]any{"json": map[string]any{"data": "value"}}
	case pkgmodel.KindJSONB:
		return map[string]any{"jsonb": map[string]any{"data": "value"}}
	case pkgmodel.KindDate:
		return ExampleDate
	case pkgmodel.KindArray:
		return arrayPlaceholder(field.ElementKind)
	default:
		return "example"
	}
}

func arrayPlaceholder(kind pkgmodel.FieldKind) []any {
	switch kind {
	case pkgmodel.KindString:
		return []any{"Alfa", "Beta"}
	case pkgmodel.KindText:
		return []any{"first text block", "second text block"}
	case pkgmodel.KindInteger:
		return []any{1, 2}
	case pkgmodel.KindFloat:
		return []any{1.2, 2.8}
	case pkgmodel.KindBoolean:
		return []any{true, false}
	case pkgmodel.KindDate:
		return []any{ExampleDate}
	default:
		return []any{"example"}
	}
}

// SynthesizeExample builds a JSON-ready value mirroring node. Objects become
// insertion-ordered maps, arrays a single-element slice. With onlyRequired set,
// leaves that are not required are left out of their object.
func SynthesizeExample(node pkgmodel.FieldNode, onlyRequired bool) any {
	switch n := node.(type) {
	case pkgmodel.FieldDescriptor:
		return ExampleValue(n)
	case pkgmodel.ArrayOf:
		if n.Element == nil {
			return []any{orderedmap.New[string, any]()}
		}
		return []any{SynthesizeExample(n.Element, onlyRequired)}
	case pkgmodel.Object:
		data := orderedmap.New[string, any]()
		for _, prop := range n {
			switch child := prop.Node.(type) {
			case nil:
				continue
			case pkgmodel.FieldDescriptor:
				if onlyRequired && !child.IsRequired() {
					continue
				}
				data.Set(prop.Name, ExampleValue(child))
			default:
				data.Set(prop.Name, SynthesizeExample(child, onlyRequired))
			}
		}
		return data
	default:
		return nil
	}
}

// IsEmptyExample reports whether a synthesized value carries no data.
func IsEmptyExample(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case *orderedmap.OrderedMap[string, any]:
		return value.Len() == 0
	default:
		return false
	}
}

// FormatExample renders v as 2-space indented JSON with every line prefixed
// by "* " and terminated by a newline.
func FormatExample(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		out.WriteString(ExamplePrefix)
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String(), nil
}
