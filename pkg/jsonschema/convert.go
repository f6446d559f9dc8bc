package jsonschema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

var supportedSchemaKeys = map[string]struct{}{
	"$schema":              {},
	"$id":                  {},
	"$defs":                {},
	"definitions":          {},
	"$anchor":              {},
	"$comment":             {},
	"type":                 {},
	"properties":           {},
	"required":             {},
	"additionalProperties": {},
	"items":                {},
	"minItems":             {},
	"maxItems":             {},
	"uniqueItems":          {},
	"oneOf":                {},
	"anyOf":                {},
	"allOf":                {},
	"enum":                 {},
	"const":                {},
	"title":                {},
	"description":          {},
	"default":              {},
	"examples":             {},
	"nullable":             {},
	"readOnly":             {},
	"writeOnly":            {},
	"deprecated":           {},
	"minimum":              {},
	"maximum":              {},
	"exclusiveMinimum":     {},
	"exclusiveMaximum":     {},
	"multipleOf":           {},
	"minLength":            {},
	"maxLength":            {},
	"pattern":              {},
	"format":               {},
}

// convertDocument turns a resolved payload into models. rootName names the
// root model when the root schema has no title.
func convertDocument(payload map[string]any, rootName string) (model.Document, error) {
	doc := model.Document{
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: strings.TrimSpace(readString(payload, "description")),
	}

	if hasProperties(payload) {
		attrs, err := objectOf(payload, "#")
		if err != nil {
			return model.Document{}, err
		}
		name := doc.Title
		if name == "" || strings.ContainsAny(name, " \t") {
			name = rootName
		}
		doc.Models = append(doc.Models, model.ModelDescriptor{
			Name:       name,
			Comment:    doc.Description,
			Attributes: attrs,
		})
	}

	for _, section := range []string{"$defs", "definitions"} {
		raw, ok := payload[section]
		if !ok {
			continue
		}
		defs, ok := raw.(map[string]any)
		if !ok {
			return model.Document{}, fmt.Errorf("%s must be an object", section)
		}
		for _, name := range orderedKeys(payload, section, defs) {
			def, ok := defs[name].(map[string]any)
			if !ok {
				return model.Document{}, fmt.Errorf("schema must be an object at %s", joinPath("#", section, name))
			}
			if !hasProperties(def) {
				continue
			}
			attrs, err := objectOf(def, joinPath("#", section, name))
			if err != nil {
				return model.Document{}, err
			}
			doc.Models = append(doc.Models, model.ModelDescriptor{
				Name:       name,
				Comment:    comment(def),
				Attributes: attrs,
			})
		}
	}
	return doc, nil
}

// node converts one schema into a field tree node.
func node(payload map[string]any, path string) (model.FieldNode, error) {
	if err := validateKeywords(payload, path); err != nil {
		return nil, err
	}

	if variant := firstVariant(payload); variant != nil {
		merged := cloneAny(variant).(map[string]any)
		for _, key := range []string{"title", "description", "default", "x-comment", "x-label"} {
			if value, ok := payload[key]; ok {
				merged[key] = value
			}
		}
		return node(merged, path)
	}

	if hasProperties(payload) {
		return objectOf(payload, path)
	}

	typ, _ := schemaType(payload)
	if typ == "array" {
		if items, ok := payload["items"].(map[string]any); ok && hasProperties(items) {
			element, err := node(items, joinPath(path, "items"))
			if err != nil {
				return nil, err
			}
			return model.ArrayOf{Element: element}, nil
		}
	}
	return fieldOf(payload, path)
}

// objectOf builds an Object from properties, merging allOf members first.
func objectOf(payload map[string]any, path string) (model.Object, error) {
	if err := validateKeywords(payload, path); err != nil {
		return nil, err
	}

	props, order, required, err := collectProperties(payload, path)
	if err != nil {
		return nil, err
	}

	obj := make(model.Object, 0, len(order))
	for _, name := range order {
		child, ok := props[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema must be an object at %s", joinPath(path, "properties", name))
		}
		converted, err := node(child, joinPath(path, "properties", name))
		if err != nil {
			return nil, err
		}
		if field, ok := converted.(model.FieldDescriptor); ok {
			switch {
			case explicitlyNullable(child):
				field.Nullable = model.Bool(true)
			case required[name]:
				field.Nullable = model.Bool(false)
			}
			converted = field
		}
		obj = append(obj, model.Prop(name, converted))
	}
	return obj, nil
}

func collectProperties(payload map[string]any, path string) (map[string]any, []string, map[string]bool, error) {
	props := make(map[string]any)
	var order []string
	required := make(map[string]bool)

	if members, ok := payload["allOf"].([]any); ok {
		for idx, member := range members {
			memberMap, ok := member.(map[string]any)
			if !ok {
				return nil, nil, nil, fmt.Errorf("allOf member must be an object at %s", joinPath(path, "allOf", fmt.Sprint(idx)))
			}
			mp, mo, mr, err := collectProperties(memberMap, joinPath(path, "allOf", fmt.Sprint(idx)))
			if err != nil {
				return nil, nil, nil, err
			}
			for _, name := range mo {
				if _, seen := props[name]; !seen {
					order = append(order, name)
				}
				props[name] = mp[name]
			}
			for name := range mr {
				required[name] = true
			}
		}
	}

	if raw, ok := payload["properties"]; ok {
		own, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, nil, fmt.Errorf("properties must be an object at %s", path)
		}
		for _, name := range orderedKeys(payload, "properties", own) {
			if _, seen := props[name]; !seen {
				order = append(order, name)
			}
			props[name] = own[name]
		}
	}

	if raw, ok := payload["required"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, nil, nil, fmt.Errorf("required must be an array at %s", path)
		}
		for idx, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, nil, nil, fmt.Errorf("required[%d] must be a string at %s", idx, path)
			}
			required[name] = true
		}
	}
	return props, order, required, nil
}

func fieldOf(payload map[string]any, path string) (model.FieldDescriptor, error) {
	typ, _ := schemaType(payload)
	if typ != "" && !isAllowedType(typ) {
		return model.FieldDescriptor{}, fmt.Errorf("unsupported type %q at %s", typ, path)
	}

	field := model.FieldDescriptor{
		Kind:       kindOf(payload),
		Default:    payload["default"],
		Example:    exampleOf(payload),
		Comment:    comment(payload),
		Label:      label(payload),
		PrimaryKey: boolExtension(payload, "x-primary-key"),
		ForeignKey: boolExtension(payload, "x-foreign-key"),
	}

	enum, err := enumValues(payload, path)
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	if len(enum) > 0 {
		field.EnumValues = enum
	}

	if field.Kind == model.KindArray {
		if items, ok := payload["items"].(map[string]any); ok {
			field.ElementKind = kindOf(items)
		}
	}

	rules, err := rulesOf(payload, path)
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	field.Validate = rules
	return field, nil
}

func kindOf(payload map[string]any) model.FieldKind {
	if _, ok := payload["enum"]; ok {
		return model.KindEnum
	}
	if _, ok := payload["const"]; ok {
		return model.KindEnum
	}
	typ, _ := schemaType(payload)
	format := strings.TrimSpace(readString(payload, "format"))
	switch typ {
	case "string":
		switch format {
		case "date", "date-time":
			return model.KindDate
		}
		if max, ok := toInt(payload["maxLength"]); ok && max > 255 {
			return model.KindText
		}
		return model.KindString
	case "integer":
		return model.KindInteger
	case "number":
		return model.KindFloat
	case "boolean":
		return model.KindBoolean
	case "array":
		return model.KindArray
	default:
		return model.KindJSON
	}
}

func rulesOf(payload map[string]any, path string) ([]model.ValidationRule, error) {
	var out []model.ValidationRule

	minLen, hasMinLen := payload["minLength"]
	maxLen, hasMaxLen := payload["maxLength"]
	if hasMinLen || hasMaxLen {
		lo := 0
		if hasMinLen {
			value, ok := toInt(minLen)
			if !ok {
				return nil, fmt.Errorf("minLength must be an integer at %s", path)
			}
			lo = value
		}
		if hasMaxLen {
			hi, ok := toInt(maxLen)
			if !ok {
				return nil, fmt.Errorf("maxLength must be an integer at %s", path)
			}
			out = append(out, model.NormalizeRule("len", []any{lo, hi}))
		} else {
			out = append(out, model.NormalizeRule("len", []any{lo}))
		}
	}

	for _, bound := range []struct{ rule, inclusive, exclusive string }{
		{"min", "minimum", "exclusiveMinimum"},
		{"max", "maximum", "exclusiveMaximum"},
	} {
		if raw, ok := payload[bound.inclusive]; ok {
			value, ok := toNumber(raw)
			if !ok {
				return nil, fmt.Errorf("%s must be a number at %s", bound.inclusive, path)
			}
			out = append(out, model.NormalizeRule(bound.rule, value))
			continue
		}
		if raw, ok := payload[bound.exclusive]; ok {
			if _, isBool := raw.(bool); isBool {
				continue
			}
			value, ok := toNumber(raw)
			if !ok {
				return nil, fmt.Errorf("%s must be a number at %s", bound.exclusive, path)
			}
			out = append(out, model.NormalizeRule(bound.rule, value))
		}
	}

	if raw, ok := payload["pattern"]; ok {
		pattern, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("pattern must be a string at %s", path)
		}
		out = append(out, model.NormalizeRule("is", pattern))
	}

	switch strings.TrimSpace(readString(payload, "format")) {
	case "email":
		out = append(out, model.NormalizeRule("isEmail", true))
	case "uuid":
		out = append(out, model.NormalizeRule("isUUID", true))
	case "uri", "url":
		out = append(out, model.NormalizeRule("isUrl", true))
	}
	return out, nil
}

func enumValues(payload map[string]any, path string) ([]string, error) {
	var values []any
	if raw, ok := payload["enum"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("enum must be an array at %s", path)
		}
		values = list
	} else if raw, ok := payload["const"]; ok {
		values = []any{raw}
	}

	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		out = append(out, fmt.Sprint(value))
	}
	return out, nil
}

func exampleOf(payload map[string]any) any {
	if list, ok := payload["examples"].([]any); ok && len(list) > 0 {
		return list[0]
	}
	return nil
}

func comment(payload map[string]any) string {
	if value := strings.TrimSpace(readString(payload, "x-comment")); value != "" {
		return value
	}
	return strings.TrimSpace(readString(payload, "description"))
}

func label(payload map[string]any) string {
	if value := strings.TrimSpace(readString(payload, "x-label")); value != "" {
		return value
	}
	return strings.TrimSpace(readString(payload, "title"))
}

// schemaType returns the first non-null type and whether "null" was listed.
func schemaType(payload map[string]any) (string, bool) {
	switch typed := payload["type"].(type) {
	case string:
		return strings.TrimSpace(typed), false
	case []any:
		first, nullable := "", false
		for _, entry := range typed {
			name, _ := entry.(string)
			if name == "null" {
				nullable = true
				continue
			}
			if first == "" {
				first = name
			}
		}
		return first, nullable
	default:
		return "", false
	}
}

func explicitlyNullable(payload map[string]any) bool {
	if _, nullable := schemaType(payload); nullable {
		return true
	}
	flag, _ := payload["nullable"].(bool)
	return flag
}

// firstVariant picks the first non-null oneOf/anyOf member of a schema
// without its own type or properties.
func firstVariant(payload map[string]any) map[string]any {
	if typ, _ := schemaType(payload); typ != "" || hasProperties(payload) {
		return nil
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		list, ok := payload[key].([]any)
		if !ok {
			continue
		}
		for _, entry := range list {
			variant, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if readString(variant, "type") == "null" {
				continue
			}
			return variant
		}
	}
	return nil
}

func hasProperties(payload map[string]any) bool {
	if _, ok := payload["properties"]; ok {
		return true
	}
	members, ok := payload["allOf"].([]any)
	if !ok {
		return false
	}
	for _, member := range members {
		if memberMap, ok := member.(map[string]any); ok && hasProperties(memberMap) {
			return true
		}
	}
	return false
}

func validateKeywords(payload map[string]any, path string) error {
	for _, key := range sortedKeys(payload) {
		if isVendorExtension(key) {
			continue
		}
		if _, ok := supportedSchemaKeys[key]; ok {
			continue
		}
		if key == "$ref" {
			return fmt.Errorf("unresolved $ref %q at %s", readString(payload, key), path)
		}
		return fmt.Errorf("unsupported keyword %q at %s", key, path)
	}
	return nil
}

func boolExtension(payload map[string]any, key string) bool {
	flag, _ := payload[key].(bool)
	return flag
}

// orderedKeys returns the keys of section in declaration order when known,
// sorted otherwise. Vendor keys are never properties.
func orderedKeys(parent map[string]any, section string, items map[string]any) []string {
	recorded, _ := parent[orderKey(section)].([]any)
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, entry := range recorded {
		name, _ := entry.(string)
		if _, ok := items[name]; !ok || seen[name] || isVendorExtension(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range sortedKeys(items) {
		if !seen[name] && !isVendorExtension(name) {
			out = append(out, name)
		}
	}
	return out
}

func toNumber(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v), true
		}
		return v, true
	default:
		return nil, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func isAllowedType(value string) bool {
	switch value {
	case "object", "array", "string", "integer", "number", "boolean":
		return true
	default:
		return false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
