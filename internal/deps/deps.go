package deps

import (
	"os"
	"path"
	"strings"

	"scout/internal/chunker"
	"scout/internal/walker"
)

// Graph maps root-relative file paths to the ordered list of local files
// they import. Cycles are representable: resolution is a single flat lookup
// per import, not a traversal, so they can never cause non-termination.
type Graph map[string][]string

// Build statically maps local import relationships for the filtered source
// files under root. Import extraction is tolerant per file (a failed parse
// contributes an empty list); unresolved and external imports are dropped
// silently. The graph is recomputed fully on every call and never persisted.
func Build(root string, extractor *chunker.Extractor, registry *chunker.Registry) Graph {
	files := walker.List(root, registry.Extensions())

	// Module key → file, one flat map for the whole tree.
	modules := make(map[string]string, len(files))
	for _, f := range files {
		modules[moduleKey(f.RelPath)] = f.RelPath
	}

	graph := make(Graph, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			graph[f.RelPath] = nil
			continue
		}

		var resolved []string
		for _, imp := range extractor.Imports(f.RelPath, src) {
			if target, ok := modules[importKey(imp, f.RelPath)]; ok {
				resolved = append(resolved, target)
			}
		}
		graph[f.RelPath] = resolved
	}
	return graph
}

// moduleKey canonicalizes a root-relative file path: extension stripped,
// slash-separated.
func moduleKey(relPath string) string {
	return strings.TrimSuffix(relPath, path.Ext(relPath))
}

// importKey canonicalizes a raw import reference into moduleKey form.
// Relative imports ("./util", "../lib/x") resolve against the importing
// file's directory; dotted module paths ("pkg.util") become slash-separated.
func importKey(imp, fromRel string) string {
	if strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../") {
		joined := path.Join(path.Dir(fromRel), imp)
		return strings.TrimSuffix(joined, path.Ext(joined))
	}
	if !strings.Contains(imp, "/") {
		return strings.ReplaceAll(imp, ".", "/")
	}
	return strings.TrimSuffix(imp, path.Ext(imp))
}
