package render

import (
	"github.com/goliatone/go-docgen/pkg/model"
)

// DefaultLocale is used when RenderOptions.Locale is empty.
const DefaultLocale = "en"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the parsed document.
type RenderOptions struct {
	// Locale selects the catalog used for generated prose (list/object lines,
	// example titles, permission text, table headers). Tags and section
	// labels are never translated.
	Locale string
	// Translator resolves message keys. Nil uses the built-in catalog.
	Translator Translator
	// OnMissing decides what to render when a key cannot be translated.
	OnMissing MissingTranslationHandler
	// Subset narrows the models and routes that reach the renderer.
	Subset DocumentSubset
	// Sanitize strips HTML from comments, labels and descriptions.
	Sanitize bool
}

// Prepare applies the subset and sanitize options to a copy of doc.
func Prepare(doc model.Document, opts RenderOptions) model.Document {
	out := doc
	out.Models = append([]model.ModelDescriptor(nil), doc.Models...)
	out.Routes = append([]model.RouteDescriptor(nil), doc.Routes...)

	ApplySubset(&out, opts.Subset)
	if opts.Sanitize {
		SanitizeDocument(&out)
	}
	return out
}
