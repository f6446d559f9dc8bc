package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

// ValidationBreak separates a field description from its validation rules.
const ValidationBreak = "<br>"

// CustomRuleText is rendered in place of opaque validator functions.
const CustomRuleText = "custom"

// FieldName renders the qualified path of a field for an annotation line.
// Output fields are always bracketed. Input fields carry "=default" when a
// default is defined and are bracketed unless the field is not nullable.
func FieldName(field pkgmodel.FieldDescriptor, path string, isOutput bool) string {
	if isOutput {
		return "[" + path + "]"
	}
	name := path
	if field.HasDefault() {
		name += "=" + FormatLiteral(field.Default)
	}
	if field.IsRequired() {
		return name
	}
	return "[" + name + "]"
}

// RenderValidation renders the declared rules of a field as
// "<br>name: arg, name: arg". It returns "" when onlyKind is set or the field
// declares no rules.
func RenderValidation(field pkgmodel.FieldDescriptor, onlyKind bool) string {
	if onlyKind || len(field.Validate) == 0 {
		return ""
	}
	fragments := make([]string, 0, len(field.Validate))
	for _, raw := range field.Validate {
		rule := pkgmodel.NormalizeRule(raw.Name, raw)
		fragments = append(fragments, rule.Name+": "+ruleArgument(rule))
	}
	return ValidationBreak + strings.Join(fragments, ", ")
}

func ruleArgument(rule pkgmodel.ValidationRule) string {
	if rule.IsCustom() {
		return CustomRuleText
	}
	switch v := rule.Args.(type) {
	case nil:
		return "true"
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return compactJSON(v)
	}
}

// FormatLiteral renders a scalar the way it reads in annotation text:
// strings raw, numbers without trailing zeros, everything else as compact
// JSON.
func FormatLiteral(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(value)
	default:
		return compactJSON(value)
	}
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
