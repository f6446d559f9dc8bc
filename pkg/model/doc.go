// Package model defines the metadata consumed by docgen renderers: field
// descriptors as produced by an ORM or schema layer, the FieldNode variant used
// to describe nested request/response payloads, and the model and route
// descriptors grouped into a Document. Format adapters under pkg/ build these
// types; renderers under pkg/renderers read them and never mutate them.
package model
