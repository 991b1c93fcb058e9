package chunker

import "strings"

// JoinImports serializes an import list for storage as chunk metadata.
func JoinImports(imports []string) string {
	return strings.Join(imports, ",")
}

// SplitImports is the inverse of JoinImports. An empty serialization yields
// an empty list.
func SplitImports(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
