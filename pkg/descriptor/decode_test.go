package descriptor_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-docgen/pkg/descriptor"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/testsupport"
)

func tituloField() model.FieldDescriptor {
	return model.FieldDescriptor{
		Kind:     model.KindString,
		Nullable: model.Bool(false),
		Comment:  "Book title.",
		Validate: []model.ValidationRule{{Name: "len", Args: []any{1, 100}}},
	}
}

func estadoField() model.FieldDescriptor {
	return model.FieldDescriptor{
		Kind:       model.KindEnum,
		EnumValues: []string{"ACTIVO", "INACTIVO"},
		Default:    "ACTIVO",
	}
}

func TestDecode_Fixture(t *testing.T) {
	raw := testsupport.MustReadGolden(t, filepath.Join("testdata", "biblioteca.yaml"))

	got, err := descriptor.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	idField := model.FieldDescriptor{Kind: model.KindInteger, PrimaryKey: true, Comment: "Book ID."}
	requiredEstado := estadoField()
	requiredEstado.Nullable = model.Bool(false)

	want := model.Document{
		Title:       "Biblioteca",
		Description: "Book catalogue.",
		Version:     "1.0",
		Models: []model.ModelDescriptor{{
			Name:    "libro",
			Comment: "Represents a book.",
			Attributes: model.Object{
				model.Prop("id", idField),
				model.Prop("titulo", tituloField()),
				model.Prop("estado", estadoField()),
				model.Prop("tags", model.FieldDescriptor{Kind: model.KindArray, ElementKind: model.KindString}),
				model.Prop("fid_autor", model.FieldDescriptor{Kind: model.KindInteger, ForeignKey: true}),
			},
		}},
		Routes: []model.RouteDescriptor{{
			Method:      "POST",
			Path:        "/libros",
			Name:        "Crear libro",
			Group:       "Libros",
			Permissions: []string{"admin"},
			Input: model.Input{
				Headers: model.Object{
					model.Prop("Authorization", model.FieldDescriptor{Kind: model.KindString, Nullable: model.Bool(false)}),
				},
				Body: model.Object{
					model.Prop("titulo", tituloField()),
					model.Prop("estado", requiredEstado),
					model.Prop("etiquetas", model.ArrayOf{Element: model.Object{
						model.Prop("nombre", model.FieldDescriptor{Kind: model.KindString}),
					}}),
				},
			},
			Output: model.Object{
				model.Prop("id", idField),
				model.Prop("titulo", tituloField()),
			},
		}},
	}

	opts := cmpopts.IgnoreFields(model.RouteDescriptor{}, "OutputExamples", "Controller")
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	examples := got.Routes[0].OutputExamples
	if len(examples) != 1 || examples[0].Title != "Created" {
		t.Fatalf("unexpected examples: %+v", examples)
	}
	data, err := json.Marshal(examples[0].Data)
	if err != nil {
		t.Fatalf("marshal example: %v", err)
	}
	if string(data) != `{"titulo":"Ficciones","id":7}` {
		t.Fatalf("example key order not preserved: %s", data)
	}
}

func TestDecode_JSON(t *testing.T) {
	raw := `{"models": {"autor": {"attributes": {"nombre": {"kind": "string", "nullable": true, "xlabel": "Nombre completo"}}}}}`

	got, err := descriptor.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Object{model.Prop("nombre", model.FieldDescriptor{
		Kind:     model.KindString,
		Nullable: model.Bool(true),
		Label:    "Nombre completo",
	})}
	if diff := cmp.Diff(want, got.Models[0].Attributes); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_ValidateForms(t *testing.T) {
	raw := `
models:
  usuario:
    attributes:
      email:
        type: STRING
        validate:
          - isEmail
          - len: {args: [3, 60], msg: too long}
`
	got, err := descriptor.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	field, _ := got.Models[0].Attributes.Get("email")
	want := []model.ValidationRule{
		{Name: "isEmail"},
		{Name: "len", Args: []any{3, 60}},
	}
	if diff := cmp.Diff(want, field.(model.FieldDescriptor).Validate); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NullPropertyIsUndefined(t *testing.T) {
	got, err := descriptor.Decode([]byte("routes:\n  - path: /x\n    output:\n      id: INTEGER\n      skip: ~\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj := got.Routes[0].Output.(model.Object)
	if node, ok := obj.Get("skip"); !ok || node != nil {
		t.Fatalf("expected skip to be present and nil, got %#v", node)
	}
}

func TestDecode_ObjectWithTypeProperty(t *testing.T) {
	raw := `
routes:
  - method: post
    path: /pagos
    input:
      body:
        type: STRING
        amount: FLOAT
        meta:
          kind: STRING
          comment: {type: STRING, comment: Free text.}
`
	got, err := descriptor.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Object{
		model.Prop("type", model.FieldDescriptor{Kind: model.KindString}),
		model.Prop("amount", model.FieldDescriptor{Kind: model.KindFloat}),
		model.Prop("meta", model.Object{
			model.Prop("kind", model.FieldDescriptor{Kind: model.KindString}),
			model.Prop("comment", model.FieldDescriptor{Kind: model.KindString, Comment: "Free text."}),
		}),
	}
	if diff := cmp.Diff(want, got.Routes[0].Input.Body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_UnresolvedRef(t *testing.T) {
	raw := "routes:\n  - path: /x\n    output:\n      id: {$ref: $.models.nada.attributes.id}\n"
	_, err := descriptor.Decode([]byte(raw))
	if !errors.Is(err, descriptor.ErrUnresolvedRef) {
		t.Fatalf("expected ErrUnresolvedRef, got %v", err)
	}
}

func TestDecode_RefCycle(t *testing.T) {
	raw := `
models:
  a:
    attributes:
      x: {$ref: $.models.a.attributes.y}
      y: {$ref: $.models.a.attributes.x}
`
	_, err := descriptor.Decode([]byte(raw))
	if !errors.Is(err, descriptor.ErrRefCycle) {
		t.Fatalf("expected ErrRefCycle, got %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"not a mapping":    "- a\n- b\n",
		"invalid yaml":     "models: [\n",
		"multi element":    "routes:\n  - output:\n      - a: STRING\n      - b: STRING\n",
		"unknown section":  "routes:\n  - input:\n      cookies: {a: STRING}\n",
		"routes not a seq": "routes: {a: 1}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := descriptor.Decode([]byte(raw))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "descriptor: ") {
				t.Fatalf("error lacks package prefix: %v", err)
			}
		})
	}
}
