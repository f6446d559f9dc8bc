package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docgen/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// SanitizeText strips every HTML element from raw, keeping the text content
// unescaped so it reads the same inside annotation blocks and markdown cells.
func SanitizeText(raw string) string {
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	cleaned := textSanitizer().Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// SanitizeDocument strips HTML from the free text of doc in place. Callers
// sharing the model or route slices should copy them first, as Prepare does.
func SanitizeDocument(doc *model.Document) {
	if doc == nil {
		return
	}

	doc.Title = SanitizeText(doc.Title)
	doc.Description = SanitizeText(doc.Description)

	for i, m := range doc.Models {
		m.Comment = SanitizeText(m.Comment)
		if attrs, ok := model.MapLeaves(m.Attributes, sanitizeField).(model.Object); ok {
			m.Attributes = attrs
		}
		doc.Models[i] = m
	}

	for i, route := range doc.Routes {
		route.Description = SanitizeText(route.Description)
		route.Input = model.Input{
			Headers: model.MapLeaves(route.Input.Headers, sanitizeField),
			Params:  model.MapLeaves(route.Input.Params, sanitizeField),
			Query:   model.MapLeaves(route.Input.Query, sanitizeField),
			Body:    model.MapLeaves(route.Input.Body, sanitizeField),
		}
		route.Output = model.MapLeaves(route.Output, sanitizeField)
		doc.Routes[i] = route
	}
}

func sanitizeField(field model.FieldDescriptor) model.FieldDescriptor {
	field.Comment = SanitizeText(field.Comment)
	field.Label = SanitizeText(field.Label)
	return field
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
