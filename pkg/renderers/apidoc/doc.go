// Package apidoc compiles route descriptors into apidoc annotation blocks
// (`/** ... */` with @api tags), including synthesized JSON examples.
//
// Compile is the pure entry point. Renderer wraps it for the render registry
// and emits the blocks of every route in a document.
package apidoc
