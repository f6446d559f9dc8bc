package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-docgen/pkg/model"
)

const (
	relationshipExtensionKey = "x-relationships"
	foreignKeyExtensionKey   = "x-foreign-key"
	primaryKeyExtensionKey   = "x-primary-key"

	relationshipForeignKeyAttr = "foreignKey"
)

var relationshipKeyLookup = map[string]string{
	"foreignkey": relationshipForeignKeyAttr,
	"foreignid":  relationshipForeignKeyAttr,
}

// converter turns kin-openapi schemas into field trees. Schemas already on the
// current path are rendered as JSON leaves so recursive references terminate.
type converter struct {
	visiting map[*openapi3.Schema]bool
}

func newConverter() *converter {
	return &converter{visiting: map[*openapi3.Schema]bool{}}
}

func (c *converter) models(spec *openapi3.T) []model.ModelDescriptor {
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil
	}
	names := declaredOrder(spec.Components.Extensions, schemaOrderKey, spec.Components.Schemas)

	var out []model.ModelDescriptor
	for _, name := range names {
		ref := spec.Components.Schemas[name]
		obj, ok := c.node(ref, false).(model.Object)
		if !ok {
			continue
		}
		out = append(out, model.ModelDescriptor{
			Name:       name,
			Comment:    ref.Value.Description,
			Attributes: obj,
		})
	}
	return out
}

func (c *converter) node(ref *openapi3.SchemaRef, required bool) model.FieldNode {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value
	if c.visiting[s] {
		return model.FieldDescriptor{Kind: model.KindJSON, Comment: cycleComment(ref, s)}
	}
	c.visiting[s] = true
	defer delete(c.visiting, s)

	props, names, requiredSet := collectProperties(s)
	switch {
	case len(props) > 0:
		return c.object(props, names, requiredSet)
	case firstSchemaType(s.Type) == "array" && s.Items != nil && isObjectSchema(s.Items.Value):
		return model.ArrayOf{Element: c.node(s.Items, false)}
	case firstSchemaType(s.Type) == "" && len(s.OneOf) > 0:
		return c.node(s.OneOf[0], required)
	case firstSchemaType(s.Type) == "" && len(s.AnyOf) > 0:
		return c.node(s.AnyOf[0], required)
	default:
		return field(s, required)
	}
}

func (c *converter) object(props openapi3.Schemas, names []string, required map[string]bool) model.Object {
	foreign := foreignKeys(props)
	obj := make(model.Object, 0, len(names))
	for _, name := range names {
		child := c.node(props[name], required[name])
		if f, ok := child.(model.FieldDescriptor); ok && foreign[name] {
			f.ForeignKey = true
			child = f
		}
		obj = append(obj, model.Prop(name, child))
	}
	return obj
}

// collectProperties merges a schema's own properties with those of its allOf
// members. names keeps declaration order, allOf members first.
func collectProperties(s *openapi3.Schema) (props openapi3.Schemas, names []string, required map[string]bool) {
	props = openapi3.Schemas{}
	required = map[string]bool{}
	var walk func(*openapi3.Schema, int)
	walk = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 16 {
			return
		}
		for _, member := range s.AllOf {
			if member != nil {
				walk(member.Value, depth+1)
			}
		}
		for _, name := range declaredOrder(s.Extensions, propertyOrderKey, s.Properties) {
			if _, seen := props[name]; !seen {
				names = append(names, name)
			}
			props[name] = s.Properties[name]
		}
		for _, name := range s.Required {
			required[name] = true
		}
	}
	walk(s, 0)
	return props, names, required
}

func isObjectSchema(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	props, _, _ := collectProperties(s)
	return len(props) > 0
}

func field(s *openapi3.Schema, required bool) model.FieldDescriptor {
	f := model.FieldDescriptor{
		Kind:    kindOf(s),
		Comment: s.Description,
		Label:   s.Title,
		Default: s.Default,
		Example: s.Example,
	}
	switch {
	case required:
		f.Nullable = model.Bool(false)
	case s.Nullable:
		f.Nullable = model.Bool(true)
	}
	if len(s.Enum) > 0 {
		f.EnumValues = make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			f.EnumValues = append(f.EnumValues, fmt.Sprint(v))
		}
	}
	if f.Kind == model.KindArray && s.Items != nil && s.Items.Value != nil {
		f.ElementKind = kindOf(s.Items.Value)
	}
	f.Validate = rules(s)
	f.PrimaryKey = boolExtension(s.Extensions, primaryKeyExtensionKey)
	f.ForeignKey = boolExtension(s.Extensions, foreignKeyExtensionKey)
	return f
}

func kindOf(s *openapi3.Schema) model.FieldKind {
	if len(s.Enum) > 0 {
		return model.KindEnum
	}
	switch firstSchemaType(s.Type) {
	case "string":
		switch s.Format {
		case "date", "date-time":
			return model.KindDate
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

// rules maps JSON Schema constraints onto validator names.
func rules(s *openapi3.Schema) []model.ValidationRule {
	var out []model.ValidationRule
	switch {
	case s.MaxLength != nil:
		out = append(out, model.NormalizeRule("len", []any{int(s.MinLength), int(*s.MaxLength)}))
	case s.MinLength > 0:
		out = append(out, model.NormalizeRule("len", []any{int(s.MinLength)}))
	}
	if s.Min != nil {
		out = append(out, model.NormalizeRule("min", *s.Min))
	}
	if s.Max != nil {
		out = append(out, model.NormalizeRule("max", *s.Max))
	}
	if s.Pattern != "" {
		out = append(out, model.NormalizeRule("is", s.Pattern))
	}
	switch s.Format {
	case "email":
		out = append(out, model.NormalizeRule("isEmail", true))
	case "uuid":
		out = append(out, model.NormalizeRule("isUUID", true))
	case "uri", "url":
		out = append(out, model.NormalizeRule("isUrl", true))
	}
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	for _, v := range values {
		if v != "null" {
			return v
		}
	}
	return ""
}

func cycleComment(ref *openapi3.SchemaRef, s *openapi3.Schema) string {
	if s.Description != "" {
		return s.Description
	}
	if ref.Ref != "" {
		return "See " + ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
	}
	return ""
}

// foreignKeys returns the sibling property names that relationship
// extensions point at.
func foreignKeys(props openapi3.Schemas) map[string]bool {
	out := map[string]bool{}
	for name, prop := range props {
		if prop == nil || prop.Value == nil {
			continue
		}
		rel := relationshipFromExtensions(prop.Value.Extensions)
		fk := rel[relationshipForeignKeyAttr]
		if fk == "" || fk == name {
			continue
		}
		if _, exists := props[fk]; exists {
			out[fk] = true
		}
	}
	return out
}

func relationshipFromExtensions(ext map[string]any) map[string]string {
	raw, ok := ext[relationshipExtensionKey].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, val := range raw {
		canonical, ok := relationshipKeyLookup[normaliseKey(key)]
		if !ok {
			continue
		}
		if str, ok := val.(string); ok && str != "" {
			out[canonical] = str
		}
	}
	return out
}

func boolExtension(ext map[string]any, key string) bool {
	b, _ := ext[key].(bool)
	return b
}

func normaliseKey(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(unicode.ToLower(r))
		}
	}
	return builder.String()
}
