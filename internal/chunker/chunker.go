package chunker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FileChunkCap bounds the content of whole-file fallback chunks.
const FileChunkCap = 5000

// Chunk kinds.
const (
	KindFunction = "function"
	KindClass    = "class"
	KindFile     = "file"
)

// CodeChunk is a labeled span of source code with position metadata.
// Function and class chunks are byte-accurate: Content is exactly
// src[StartByte:EndByte]. Chunks are immutable once produced; a re-index
// regenerates them from scratch.
type CodeChunk struct {
	FilePath  string
	Content   string
	Kind      string
	Name      string
	StartLine int
	EndLine   int
	StartByte int
	EndByte   int
	Imports   []string
}

// Extractor parses source files using tree-sitter and extracts semantic chunks.
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor backed by the given registry.
func NewExtractor(r *Registry) *Extractor {
	return &Extractor{registry: r}
}

// ExtractFile reads path and chunks its contents. If the file cannot be
// read, it returns an empty sequence.
func (e *Extractor) ExtractFile(path string) []CodeChunk {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return e.Extract(path, src)
}

// Extract chunks the given source. Every top-level function or class
// definition becomes one chunk; a file with no top-level definitions (or no
// registered grammar, or a failed parse) degrades to a single file-type chunk
// truncated to FileChunkCap. Extract never fails past its boundary.
func (e *Extractor) Extract(path string, src []byte) []CodeChunk {
	if len(src) == 0 {
		return nil
	}

	spec, _ := e.registry.Lookup(path)
	if spec == nil {
		return []CodeChunk{fileChunk(path, src, nil)}
	}

	imports := e.Imports(path, src)

	chunks, err := definitionChunks(path, spec, src, imports)
	if err != nil || len(chunks) == 0 {
		return []CodeChunk{fileChunk(path, src, imports)}
	}
	return chunks
}

// Imports extracts the module references of a whole file. It is tolerant of
// syntax errors: on any failure it returns an empty list.
func (e *Extractor) Imports(path string, src []byte) []string {
	spec, _ := e.registry.Lookup(path)
	if spec == nil || spec.ImportQuery == "" {
		return nil
	}

	tree, err := parse(spec, src)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.ImportQuery), spec.Language)
	if err != nil {
		return nil
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var imports []string
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, cap := range m.Captures {
			if q.CaptureNameForId(cap.Index) != "import" {
				continue
			}
			imp := strings.Trim(cap.Node.Content(src), "\"'`")
			if imp != "" {
				imports = append(imports, imp)
			}
		}
	}
	return imports
}

func parse(spec *LanguageSpec, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	return parser.ParseCtx(context.Background(), nil, src)
}

func definitionChunks(path string, spec *LanguageSpec, src []byte, imports []string) ([]CodeChunk, error) {
	tree, err := parse(spec, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var captures []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var node *sitter.Node
		var kind, name string
		for _, cap := range m.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "function":
				node, kind = cap.Node, KindFunction
			case "class":
				node, kind = cap.Node, KindClass
			case "name":
				name = cap.Node.Content(src)
			}
		}
		if node == nil {
			continue
		}
		captures = append(captures, capture{
			name:      name,
			kind:      kind,
			startLine: int(node.StartPoint().Row) + 1,
			endLine:   int(node.EndPoint().Row) + 1,
			startByte: int(node.StartByte()),
			endByte:   int(node.EndByte()),
		})
	}

	// When captures overlap (e.g. a decorated definition and its inner
	// definition both match), keep only the outer node.
	captures = dedup(captures)

	chunks := make([]CodeChunk, 0, len(captures))
	for _, cap := range captures {
		chunks = append(chunks, CodeChunk{
			FilePath:  path,
			Content:   string(src[cap.startByte:cap.endByte]),
			Kind:      cap.kind,
			Name:      cap.name,
			StartLine: cap.startLine,
			EndLine:   cap.endLine,
			StartByte: cap.startByte,
			EndByte:   cap.endByte,
			Imports:   imports,
		})
	}
	return chunks, nil
}

// fileChunk builds the whole-file fallback chunk, truncated to FileChunkCap.
func fileChunk(path string, src []byte, imports []string) CodeChunk {
	content := src
	if len(content) > FileChunkCap {
		content = content[:FileChunkCap]
	}
	text := string(content)
	return CodeChunk{
		FilePath:  path,
		Content:   text,
		Kind:      KindFile,
		Name:      filepath.Base(path),
		StartLine: 1,
		EndLine:   strings.Count(text, "\n") + 1,
		StartByte: 0,
		EndByte:   len(content),
		Imports:   imports,
	}
}

// dedup removes captures fully contained within a larger capture.
func dedup(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var result []capture
	lastEnd := -1
	for _, c := range caps {
		if c.startByte >= lastEnd {
			result = append(result, c)
		}
		if c.endByte > lastEnd {
			lastEnd = c.endByte
		}
	}
	return result
}

type capture struct {
	name      string
	kind      string
	startLine int
	endLine   int
	startByte int
	endByte   int
}
