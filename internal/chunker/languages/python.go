package languages

import (
	"scout/internal/chunker"

	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *chunker.Registry) {
	r.Register("python", &chunker.LanguageSpec{
		Language: python.GetLanguage(),
		Query: `
			(module (function_definition name: (identifier) @name) @function)
			(module (class_definition name: (identifier) @name) @class)
			(module (decorated_definition definition: (function_definition name: (identifier) @name)) @function)
			(module (decorated_definition definition: (class_definition name: (identifier) @name)) @class)
		`,
		ImportQuery: `
			(import_statement name: (dotted_name) @import)
			(import_statement name: (aliased_import name: (dotted_name) @import))
			(import_from_statement module_name: (dotted_name) @import)
		`,
		Extensions: []string{"py", "pyi"},
	})
}
