package languages

import (
	"scout/internal/chunker"

	"github.com/smacker/go-tree-sitter/golang"
)

func RegisterGo(r *chunker.Registry) {
	r.Register("go", &chunker.LanguageSpec{
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @function
			(method_declaration name: (field_identifier) @name) @function
			(type_declaration (type_spec name: (type_identifier) @name)) @class
		`,
		ImportQuery: `
			(import_spec path: (interpreted_string_literal) @import)
		`,
		Extensions: []string{"go"},
	})
}
