// Package model holds the pure building blocks shared by the renderers: the
// type mapper, field-name, description and validation renderers, example
// synthesis and route normalization.
package model
