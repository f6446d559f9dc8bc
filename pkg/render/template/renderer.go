package template

import "io"

// TemplateRenderer executes named or inline templates. Every method returns
// the rendered text and also copies it to the optional writers.
type TemplateRenderer interface {
	// Render picks RenderString when name looks like template source.
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input, param any) (any, error)) error
	GlobalContext(data any) error
}
