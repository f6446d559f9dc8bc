// Package orchestrator wires loading, format detection, parsing, decoration
// and rendering into a single Generate call.
package orchestrator
