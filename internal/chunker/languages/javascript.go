package languages

import (
	"scout/internal/chunker"

	"github.com/smacker/go-tree-sitter/javascript"
)

func RegisterJavaScript(r *chunker.Registry) {
	r.Register("javascript", &chunker.LanguageSpec{
		Language: javascript.GetLanguage(),
		Query: `
			(program (function_declaration name: (identifier) @name) @function)
			(program (class_declaration name: (identifier) @name) @class)
			(program (export_statement (function_declaration name: (identifier) @name)) @function)
			(program (export_statement (class_declaration name: (identifier) @name)) @class)
			(program (lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @function)
		`,
		ImportQuery: `
			(import_statement source: (string (string_fragment) @import))
		`,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
	})
}
