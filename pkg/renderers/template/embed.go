package template

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var builtin embed.FS

// TemplatesFS is the directory of built-in templates (document.tpl and its
// partials), rooted so names carry no "templates/" prefix.
func TemplatesFS() fs.FS {
	if sub, err := fs.Sub(builtin, "templates"); err == nil {
		return sub
	}
	return builtin
}
