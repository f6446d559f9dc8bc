package model

import (
	"strings"

	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

// Route defaults.
const (
	DefaultMethod  = "get"
	DefaultGroup   = "API"
	DefaultVersion = 1
)

// NormalizeRoute returns a copy of route with defaults filled in: lower-case
// method, "[method] path" name, API group, description equal to the name,
// version 1 and empty objects for missing input sections and output. Leaf
// validation rules are normalized. The argument is not modified.
func NormalizeRoute(route pkgmodel.RouteDescriptor) pkgmodel.RouteDescriptor {
	out := route

	out.Method = strings.ToLower(strings.TrimSpace(route.Method))
	if out.Method == "" {
		out.Method = DefaultMethod
	}
	if out.Name == "" {
		out.Name = "[" + out.Method + "] " + out.Path
	}
	if out.Group == "" {
		out.Group = DefaultGroup
	}
	if out.Description == "" {
		out.Description = out.Name
	}
	if out.Version <= 0 {
		out.Version = DefaultVersion
	}

	out.Permissions = append([]string(nil), route.Permissions...)
	out.InputExamples = append([]pkgmodel.Example(nil), route.InputExamples...)
	out.OutputExamples = append([]pkgmodel.Example(nil), route.OutputExamples...)

	out.Input = pkgmodel.Input{
		Headers: normalizeTree(route.Input.Headers),
		Params:  normalizeTree(route.Input.Params),
		Query:   normalizeTree(route.Input.Query),
		Body:    normalizeTree(route.Input.Body),
	}
	out.Output = normalizeTree(route.Output)
	return out
}

func normalizeTree(node pkgmodel.FieldNode) pkgmodel.FieldNode {
	if node == nil {
		return pkgmodel.Object{}
	}
	return pkgmodel.MapLeaves(node, NormalizeField)
}

// NormalizeField returns a copy of field with every validation rule in
// canonical form.
func NormalizeField(field pkgmodel.FieldDescriptor) pkgmodel.FieldDescriptor {
	if len(field.Validate) > 0 {
		rules := make([]pkgmodel.ValidationRule, 0, len(field.Validate))
		for _, rule := range field.Validate {
			rules = append(rules, pkgmodel.NormalizeRule(rule.Name, rule))
		}
		field.Validate = rules
	}
	if len(field.EnumValues) > 0 {
		field.EnumValues = append([]string(nil), field.EnumValues...)
	}
	return field
}
