// Package openapi exposes OpenAPI 3 documents to the adapter registry.
// Operations become routes and components.schemas become models. The
// kin-openapi backed Parser implementation lives under internal/openapi so
// its types stay out of the public API.
package openapi
