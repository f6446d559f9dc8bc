package pongo

import (
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

// Filters every engine registers:
//
//	trim      strips surrounding whitespace
//	pad       right-pads to the rune width given as parameter
//	mdcell    escapes pipes and flattens newlines for markdown table cells
func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("pad") {
		_ = pongo2.RegisterFilter("pad", filterPad)
	}
	if !pongo2.FilterExists("mdcell") {
		_ = pongo2.RegisterFilter("mdcell", filterMarkdownCell)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterPad(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s := in.String()
	width := param.Integer()
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return pongo2.AsValue(s), nil
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func filterMarkdownCell(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(cellReplacer.Replace(in.String())), nil
}
