package templates

//
// Embedded text templates for generated shader source definitions
//

import _ "embed"

// Definition renders one C++ string constant per shader.
// Fields: .Symbol, .Source (escaped), .Path.
//
//go:embed definition.tmpl
var Definition string
