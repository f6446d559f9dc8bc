// Package jsonschema adapts JSON Schema documents (draft 2020-12, 2019-09 and
// draft-07) into data models. Every object schema under $defs or definitions
// becomes a ModelDescriptor, and so does the root schema when it declares
// properties. JSON Schema has no notion of routes.
//
// $ref values are inlined before conversion: local pointers, $anchor names,
// and relative or absolute references to other documents loaded through a
// schema.Loader. Recursive references are rejected with ErrRefCycle.
//
// Property order follows the document. Vendor keys x-primary-key,
// x-foreign-key, x-label and x-comment map onto the matching field
// attributes.
package jsonschema
