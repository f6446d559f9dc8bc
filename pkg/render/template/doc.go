// Package template defines the engine seam used by the template renderer.
// The pongo2 implementation lives in the pongo subpackage.
package template
