// Package introspect reads table definitions from a live database and turns
// them into model descriptors.
//
// Drivers live in subpackages (sqlite, postgres). They collect Table values
// and share the conversion in this package: declared SQL types map to field
// kinds through KindForSQLType and column defaults are decoded by
// ParseDefault.
package introspect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Introspector lists the models of a database schema.
type Introspector interface {
	Models(ctx context.Context) ([]model.ModelDescriptor, error)
}

// Table is a driver neutral view of one table.
type Table struct {
	Name    string
	Comment string
	Columns []Column
}

// Column is a driver neutral view of one column. Default holds the raw SQL
// default expression, empty when none is declared.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
	ForeignKey bool
	Comment    string
	EnumValues []string
}

// Model converts a table into a ModelDescriptor, keeping column order.
func (t Table) Model() model.ModelDescriptor {
	attrs := make(model.Object, 0, len(t.Columns))
	for _, col := range t.Columns {
		attrs = append(attrs, model.Prop(col.Name, col.Field()))
	}
	return model.ModelDescriptor{Name: t.Name, Comment: t.Comment, Attributes: attrs}
}

// Field converts the column into a FieldDescriptor. Primary keys and NOT NULL
// columns are not nullable; other columns carry no nullability constraint.
func (c Column) Field() model.FieldDescriptor {
	field := model.FieldDescriptor{
		Kind:       KindForSQLType(c.Type),
		Comment:    c.Comment,
		PrimaryKey: c.PrimaryKey,
		ForeignKey: c.ForeignKey,
	}
	if len(c.EnumValues) > 0 {
		field.Kind = model.KindEnum
		field.EnumValues = append([]string(nil), c.EnumValues...)
	}
	if field.Kind == model.KindArray {
		field.ElementKind = KindForSQLType(ElementType(c.Type))
	}
	if c.NotNull || c.PrimaryKey {
		field.Nullable = model.Bool(false)
	}
	if value, ok := ParseDefault(c.Default); ok {
		field.Default = value
	}
	if length, ok := typeLength(c.Type); ok && field.Kind == model.KindString {
		field.Validate = []model.ValidationRule{model.NormalizeRule("len", []any{0, length})}
	}
	return field
}

// Document wraps the models of in into a document titled title.
func Document(ctx context.Context, in Introspector, title string) (model.Document, error) {
	models, err := in.Models(ctx)
	if err != nil {
		return model.Document{}, fmt.Errorf("introspect: %w", err)
	}
	return model.Document{Title: title, Models: models}, nil
}

// KindForSQLType maps a declared SQL type to a FieldKind. The match follows
// SQLite affinity rules extended with the PostgreSQL type names; anything
// unrecognised is a STRING.
func KindForSQLType(declared string) model.FieldKind {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if t == "" {
		return model.KindString
	}
	if strings.HasSuffix(t, "[]") || t == "ARRAY" || strings.HasPrefix(t, "_") {
		return model.KindArray
	}
	if idx := strings.IndexByte(t, '('); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}

	switch {
	case t == "JSONB":
		return model.KindJSONB
	case t == "JSON":
		return model.KindJSON
	case t == "INTERVAL" || t == "POINT":
		return model.KindString
	case strings.Contains(t, "INT") || t == "SERIAL" || t == "BIGSERIAL" || t == "SMALLSERIAL":
		return model.KindInteger
	case strings.Contains(t, "BOOL"):
		return model.KindBoolean
	case strings.HasPrefix(t, "TIMESTAMP") || strings.HasPrefix(t, "TIME") || t == "DATE" || t == "DATETIME":
		return model.KindDate
	case t == "TEXT" || strings.Contains(t, "CLOB"):
		return model.KindText
	case strings.Contains(t, "CHAR") || t == "UUID" || t == "CITEXT":
		return model.KindString
	case strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB") ||
		t == "NUMERIC" || t == "DECIMAL" || t == "MONEY":
		return model.KindFloat
	}
	return model.KindString
}

// ElementType returns the element type of an array type name: "text[]" and
// the PostgreSQL udt form "_text" both yield "text".
func ElementType(declared string) string {
	t := strings.TrimSpace(declared)
	if trimmed, ok := strings.CutSuffix(t, "[]"); ok {
		return trimmed
	}
	return strings.TrimPrefix(t, "_")
}

// ParseDefault decodes a literal column default. Quoted strings, numbers and
// booleans are decoded, a trailing "::type" cast is dropped. Expressions such
// as CURRENT_TIMESTAMP or nextval(...) and NULL report false.
func ParseDefault(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	if idx := strings.LastIndex(s, "::"); idx > 0 && !strings.ContainsAny(s[idx:], "'()") {
		s = strings.TrimSpace(s[:idx])
	}
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}
	switch strings.ToUpper(s) {
	case "NULL":
		return nil, false
	case "TRUE":
		return true, true
	case "FALSE":
		return false, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return nil, false
}

// typeLength extracts n from declarations like VARCHAR(n).
func typeLength(declared string) (int, bool) {
	open := strings.IndexByte(declared, '(')
	end := strings.IndexByte(declared, ')')
	if open < 0 || end <= open {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(declared[open+1 : end]))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
