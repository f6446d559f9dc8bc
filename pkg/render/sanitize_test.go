package render_test

import (
	"testing"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
)

func TestSanitizeText(t *testing.T) {
	tests := map[string]string{
		"Plain text.":                           "Plain text.",
		"<b>Book</b> title.":                    "Book title.",
		"Tom & Jerry":                           "Tom & Jerry",
		`<script>alert("x")</script>Price`:      "Price",
		`<a href="javascript:void(0)">link</a>`: "link",
	}
	for in, want := range tests {
		if got := render.SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrepare_SanitizesCopy(t *testing.T) {
	doc := model.Document{
		Title: "<h1>Biblioteca</h1>",
		Models: []model.ModelDescriptor{{
			Name:    "libro",
			Comment: "<p>Represents a book.</p>",
			Attributes: model.Object{
				model.Prop("titulo", model.FieldDescriptor{Kind: model.KindString, Comment: "<i>Book title.</i>"}),
			},
		}},
		Routes: []model.RouteDescriptor{{
			Path:        "/libros",
			Description: "<em>List</em> books",
			Output: model.Object{
				model.Prop("id", model.FieldDescriptor{Kind: model.KindInteger, Label: "<u>ID</u>"}),
			},
		}},
	}

	got := render.Prepare(doc, render.RenderOptions{Sanitize: true})

	if got.Title != "Biblioteca" || got.Models[0].Comment != "Represents a book." || got.Routes[0].Description != "List books" {
		t.Fatalf("unexpected sanitized document: %+v", got)
	}
	titulo, _ := got.Models[0].Attributes.Get("titulo")
	if titulo.(model.FieldDescriptor).Comment != "Book title." {
		t.Fatalf("field comment not sanitized: %+v", titulo)
	}
	id, _ := got.Routes[0].Output.(model.Object).Get("id")
	if id.(model.FieldDescriptor).Label != "ID" {
		t.Fatalf("field label not sanitized: %+v", id)
	}

	if doc.Models[0].Comment != "<p>Represents a book.</p>" || doc.Routes[0].Description != "<em>List</em> books" {
		t.Fatalf("Prepare modified its input")
	}
}

func TestPrepare_WithoutOptionsKeepsDocument(t *testing.T) {
	doc := model.Document{Title: "<b>x</b>", Models: []model.ModelDescriptor{{Name: "a"}}}
	got := render.Prepare(doc, render.RenderOptions{})
	if got.Title != "<b>x</b>" || len(got.Models) != 1 {
		t.Fatalf("unexpected document %+v", got)
	}
}
