package model

import (
	"strings"

	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

// Display names used in annotation type braces and markdown type cells.
const (
	TypeString  = "String"
	TypeInteger = "Integer"
	TypeFloat   = "Float"
	TypeBoolean = "Boolean"
	TypeDate    = "Date"
	TypeJSON    = "JSON"
	TypeJSONB   = "JSONB"
	TypeObject  = "Object"
	TypeExample = "Example"
)

// MapType returns the display type of a field. With onlyKind set, ENUM
// renders as a plain String; otherwise its values are appended. Unknown kinds
// fall back to String.
func MapType(field pkgmodel.FieldDescriptor, onlyKind bool) string {
	switch field.Kind {
	case pkgmodel.KindString, pkgmodel.KindText:
		return TypeString
	case pkgmodel.KindInteger:
		return TypeInteger
	case pkgmodel.KindFloat:
		return TypeFloat
	case pkgmodel.KindBoolean:
		return TypeBoolean
	case pkgmodel.KindDate:
		return TypeDate
	case pkgmodel.KindJSON:
		return TypeJSON
	case pkgmodel.KindJSONB:
		return TypeJSONB
	case pkgmodel.KindEnum:
		if onlyKind {
			return TypeString
		}
		return TypeString + "=" + strings.Join(field.EnumValues, ",")
	case pkgmodel.KindArray:
		return elementType(field.ElementKind) + "[]"
	default:
		return TypeString
	}
}

func elementType(kind pkgmodel.FieldKind) string {
	switch kind {
	case pkgmodel.KindString, pkgmodel.KindText:
		return TypeString
	case pkgmodel.KindInteger:
		return TypeInteger
	case pkgmodel.KindFloat:
		return TypeFloat
	case pkgmodel.KindBoolean:
		return TypeBoolean
	case pkgmodel.KindDate:
		return TypeDate
	default:
		return TypeExample
	}
}
