package model

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	pkgmodel "github.com/goliatone/go-docgen/pkg/model"
)

// Labeler turns a raw property name into human readable text.
type Labeler func(string) string

// Describe returns the description of a field: its comment, else its label,
// else the property name run through SentenceLabeler.
func Describe(field pkgmodel.FieldDescriptor, name string) string {
	return DescribeWith(field, name, SentenceLabeler)
}

// DescribeWith is Describe with a custom labeler for the name fallback. A nil
// labeler returns the name unchanged.
func DescribeWith(field pkgmodel.FieldDescriptor, name string, labeler Labeler) string {
	if field.Comment != "" {
		return field.Comment
	}
	if field.Label != "" {
		return field.Label
	}
	if labeler == nil {
		return name
	}
	return labeler(name)
}

// Labelers maps the names accepted by the --labeler flag to labelers.
var Labelers = map[string]Labeler{
	"sentence": SentenceLabeler,
	"title":    TitleLabeler,
}

// SentenceLabeler replaces underscores with spaces and upper-cases the first
// character, leaving the rest untouched: "fecha_de_alta" becomes
// "Fecha de alta".
func SentenceLabeler(name string) string {
	text := strings.ReplaceAll(name, "_", " ")
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// TitleLabeler converts a field name into a title cased label. It splits on
// underscores/dashes and camelCase boundaries.
func TitleLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	fields := strings.Fields(word)
	for i, f := range fields {
		lower := strings.ToLower(f)
		fields[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(fields, " ")
}
