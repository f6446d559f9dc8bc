// Package descriptor reads and writes the native YAML/JSON descriptor format.
//
// A descriptor lists models (name → comment + attribute tree) and routes
// (method, path, input trees, output tree, examples). Field trees use three
// shapes: a mapping with a scalar `type` (or `kind`) key is a field, a
// one-element sequence is a list of objects shaped like that element, and any
// other mapping is a nested object. Key order is preserved.
//
// A field may reuse another one through `$ref: <JSONPath>` evaluated against
// the descriptor itself, for example `$.models.libro.attributes.titulo`.
// Sibling keys override the referenced field.
package descriptor
