// Package hcldesc reads descriptors written in HCL.
//
//	title = "Biblioteca"
//
//	model "libro" {
//	  comment = "Represents a book."
//	  field "titulo" {
//	    type       = "STRING"
//	    allow_null = false
//	    validate   = { len = [1, 100] }
//	  }
//	  list "tags" {
//	    field "nombre" { type = "STRING" }
//	  }
//	}
//
//	route "POST" "/libros" {
//	  group = "Libros"
//	  input "body" {
//	    field "titulo" { ref = "libro.titulo" }
//	  }
//	  output {
//	    field "id" { type = "INTEGER" }
//	  }
//	}
//
// Blocks keep their declaration order. `ref` copies a model attribute, and
// the other attributes of the field override it.
package hcldesc
