package model_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-docgen/internal/model"
	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		name     string
		field    pkgmodel.FieldDescriptor
		path     string
		isOutput bool
		want     string
	}{
		{"output ignores nullability", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(false)}, "id", true, "[id]"},
		{"output ignores default", pkgmodel.FieldDescriptor{Default: "x"}, "estado", true, "[estado]"},
		{"required input", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(false)}, "titulo", false, "titulo"},
		{"nullable input", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(true)}, "titulo", false, "[titulo]"},
		{"unset nullability is optional", pkgmodel.FieldDescriptor{}, "titulo", false, "[titulo]"},
		{"default on optional", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(true), Default: "x"}, "titulo", false, "[titulo=x]"},
		{"default on required", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(false), Default: "ACTIVO"}, "estado", false, "estado=ACTIVO"},
		{"zero default is defined", pkgmodel.FieldDescriptor{Default: 0}, "stock", false, "[stock=0]"},
		{"false default is defined", pkgmodel.FieldDescriptor{Default: false}, "activo", false, "[activo=false]"},
		{"nested path", pkgmodel.FieldDescriptor{Nullable: pkgmodel.Bool(false)}, "autor.nombre", false, "autor.nombre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.FieldName(tt.field, tt.path, tt.isOutput); got != tt.want {
				t.Fatalf("FieldName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderValidation(t *testing.T) {
	custom := pkgmodel.ValidatorFunc(func(any) error { return errors.New("invalid") })
	field := pkgmodel.FieldDescriptor{
		Kind: pkgmodel.KindString,
		Validate: []pkgmodel.ValidationRule{
			pkgmodel.NormalizeRule("len", []any{1, 100}),
			pkgmodel.NormalizeRule("isEmail", true),
			pkgmodel.NormalizeRule("is", "^[a-z]+$"),
			pkgmodel.NormalizeRule("min", map[string]any{"args": 3}),
			pkgmodel.NormalizeRule("check", custom),
		},
	}

	want := "<br>len: [1,100], isEmail: true, is: ^[a-z]+$, min: 3, check: custom"
	if got := model.RenderValidation(field, false); got != want {
		t.Fatalf("RenderValidation() = %q, want %q", got, want)
	}
	if got := model.RenderValidation(field, true); got != "" {
		t.Fatalf("RenderValidation(onlyKind) = %q, want empty", got)
	}
	if got := model.RenderValidation(pkgmodel.FieldDescriptor{}, false); got != "" {
		t.Fatalf("RenderValidation(no rules) = %q, want empty", got)
	}
}

func TestRenderValidation_Idempotent(t *testing.T) {
	field := pkgmodel.FieldDescriptor{
		Validate: []pkgmodel.ValidationRule{pkgmodel.NormalizeRule("max", 10)},
	}
	first := model.RenderValidation(field, false)

	normalized := model.NormalizeField(model.NormalizeField(field))
	if got := model.RenderValidation(normalized, false); got != first {
		t.Fatalf("renders differ after normalization: %q vs %q", got, first)
	}
	if first != "<br>max: 10" {
		t.Fatalf("unexpected render %q", first)
	}
}

func TestFormatLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"raw", "raw"},
		{12.5, "12.5"},
		{float64(3), "3"},
		{7, "7"},
		{true, "true"},
		{[]any{"a", 1}, `["a",1]`},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := model.FormatLiteral(tt.in); got != tt.want {
			t.Fatalf("FormatLiteral(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
