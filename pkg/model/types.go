package model

import (
	"net/http"
	"strings"
)

// FieldKind is the schema-level kind of a field as declared by the ORM layer.
type FieldKind string

const (
	KindString  FieldKind = "STRING"
	KindText    FieldKind = "TEXT"
	KindInteger FieldKind = "INTEGER"
	KindFloat   FieldKind = "FLOAT"
	KindBoolean FieldKind = "BOOLEAN"
	KindEnum    FieldKind = "ENUM"
	KindArray   FieldKind = "ARRAY"
	KindDate    FieldKind = "DATE"
	KindJSON    FieldKind = "JSON"
	KindJSONB   FieldKind = "JSONB"
)

// Kinds lists every recognised FieldKind in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{
		KindString, KindText, KindInteger, KindFloat, KindBoolean,
		KindEnum, KindArray, KindDate, KindJSON, KindJSONB,
	}
}

// ParseKind normalises a kind name. Unknown names are preserved upper-cased
// so downstream mappers can apply their fallbacks.
func ParseKind(raw string) FieldKind {
	return FieldKind(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether the kind is part of the recognised enumeration.
func (k FieldKind) Known() bool {
	for _, kind := range Kinds() {
		if kind == k {
			return true
		}
	}
	return false
}

// FieldDescriptor describes a single schema field. It is also the leaf variant
// of FieldNode.
//
// Nullable is nil when the schema declares no nullability constraint, which is
// treated as nullable. Default and Example are nil when undefined.
type FieldDescriptor struct {
	Kind        FieldKind        `json:"kind"`
	ElementKind FieldKind        `json:"elementKind,omitempty"`
	Nullable    *bool            `json:"nullable,omitempty"`
	Default     any              `json:"default,omitempty"`
	Example     any              `json:"example,omitempty"`
	Comment     string           `json:"comment,omitempty"`
	Label       string           `json:"label,omitempty"`
	EnumValues  []string         `json:"enumValues,omitempty"`
	Validate    []ValidationRule `json:"validate,omitempty"`
	PrimaryKey  bool             `json:"primaryKey,omitempty"`
	ForeignKey  bool             `json:"foreignKey,omitempty"`
}

// IsNullable reports whether the field accepts null values.
func (f FieldDescriptor) IsNullable() bool {
	return f.Nullable == nil || *f.Nullable
}

// IsRequired reports whether the field must be present in a request payload.
func (f FieldDescriptor) IsRequired() bool {
	return !f.IsNullable()
}

// HasDefault reports whether a default value is defined. Falsy values such as
// 0, false or "" count as defined.
func (f FieldDescriptor) HasDefault() bool {
	return f.Default != nil
}

// Bool returns a pointer to b, handy for FieldDescriptor.Nullable literals.
func Bool(b bool) *bool {
	return &b
}

// ModelDescriptor describes a data model and its flat attribute tree.
type ModelDescriptor struct {
	Name       string `json:"name"`
	Comment    string `json:"comment,omitempty"`
	Attributes Object `json:"attributes,omitempty"`
}

// Input groups the request field trees of a route.
type Input struct {
	Headers FieldNode
	Params  FieldNode
	Query   FieldNode
	Body    FieldNode
}

// Example is a caller supplied JSON payload attached to a route.
type Example struct {
	Title string `json:"title"`
	Data  any    `json:"data"`
}

// RouteDescriptor describes one HTTP endpoint. Controller is carried through
// untouched so callers can register it with their serving mechanism.
type RouteDescriptor struct {
	Method         string
	Path           string
	Name           string
	Group          string
	Description    string
	Version        int
	Permissions    []string
	Input          Input
	Output         FieldNode
	InputExamples  []Example
	OutputExamples []Example
	Controller     http.Handler
}

// RenderedRoute pairs a normalized route with its annotation block.
type RenderedRoute struct {
	Route  RouteDescriptor
	Apidoc string
}

// Document is the unit produced by format adapters and consumed by renderers.
type Document struct {
	Title       string
	Description string
	Version     string
	Models      []ModelDescriptor
	Routes      []RouteDescriptor
}

// Model looks up a model by name.
func (d Document) Model(name string) (ModelDescriptor, bool) {
	for _, m := range d.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}
