package languages

import (
	"scout/internal/chunker"

	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func RegisterTypeScript(r *chunker.Registry) {
	r.Register("typescript", &chunker.LanguageSpec{
		Language: typescript.GetLanguage(),
		Query: `
			(program (function_declaration name: (identifier) @name) @function)
			(program (class_declaration name: (type_identifier) @name) @class)
			(program (export_statement (function_declaration name: (identifier) @name)) @function)
			(program (export_statement (class_declaration name: (type_identifier) @name)) @class)
			(program (lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @function)
			(program (interface_declaration name: (type_identifier) @name) @class)
			(program (type_alias_declaration name: (type_identifier) @name) @class)
		`,
		ImportQuery: `
			(import_statement source: (string (string_fragment) @import))
		`,
		Extensions: []string{"ts", "tsx"},
	})
}
