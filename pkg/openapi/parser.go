package openapi

import (
	"context"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Parser converts a raw OpenAPI payload into the document model.
type Parser interface {
	Parse(ctx context.Context, raw []byte) (model.Document, error)
}

// ParserOptions exposes parsing toggles.
type ParserOptions struct {
	// Validate runs kin-openapi document validation before conversion.
	// Example payloads are never validated.
	Validate bool

	// AllowPartialDocuments accepts documents without paths, useful when only
	// components.schemas should become models.
	AllowPartialDocuments bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// WithPartialDocuments toggles support for component-only documents.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// NewParserOptions applies ParserOption functions over the defaults:
// validation on, partial documents accepted.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		Validate:              true,
		AllowPartialDocuments: true,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
