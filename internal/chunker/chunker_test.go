package chunker

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register("python", &LanguageSpec{
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
		Extensions: []string{"py"},
	})
	r.Register("go", &LanguageSpec{
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @function
			(type_declaration (type_spec name: (type_identifier) @name)) @class
		`,
		ImportQuery: `
			(import_spec path: (interpreted_string_literal) @import)
		`,
		Extensions: []string{"go"},
	})
	return r
}

const pySource = `import os
from pathlib import Path

def add(a, b):
    return a + b

class Calculator:
    def mul(self, a, b):
        return a * b
`

func TestExtractPythonDefinitions(t *testing.T) {
	e := NewExtractor(testRegistry())
	src := []byte(pySource)
	chunks := e.Extract("calc.py", src)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	byName := map[string]CodeChunk{}
	for _, c := range chunks {
		byName[c.Name] = c
	}

	add, ok := byName["add"]
	if !ok {
		t.Fatal("missing chunk for add")
	}
	if add.Kind != KindFunction {
		t.Errorf("add kind = %q, want %q", add.Kind, KindFunction)
	}

	calc, ok := byName["Calculator"]
	if !ok {
		t.Fatal("missing chunk for Calculator")
	}
	if calc.Kind != KindClass {
		t.Errorf("Calculator kind = %q, want %q", calc.Kind, KindClass)
	}

	for _, c := range chunks {
		if c.StartLine > c.EndLine {
			t.Errorf("chunk %s: start_line %d > end_line %d", c.Name, c.StartLine, c.EndLine)
		}
		if got := string(src[c.StartByte:c.EndByte]); got != c.Content {
			t.Errorf("chunk %s: content is not byte-accurate", c.Name)
		}
		if c.Content == "" {
			t.Errorf("chunk %s: empty content", c.Name)
		}
	}
}

func TestExtractPythonImports(t *testing.T) {
	e := NewExtractor(testRegistry())
	chunks := e.Extract("calc.py", []byte(pySource))

	want := []string{"os", "pathlib"}
	for _, c := range chunks {
		if len(c.Imports) != len(want) {
			t.Fatalf("imports = %v, want %v", c.Imports, want)
		}
		for i := range want {
			if c.Imports[i] != want[i] {
				t.Fatalf("imports = %v, want %v", c.Imports, want)
			}
		}
	}
}

func TestExtractGoDefinitions(t *testing.T) {
	src := []byte(`package main

import (
	"fmt"
	"strings"
)

type Greeter struct {
	name string
}

func Hello(name string) string {
	return fmt.Sprintf("hello %s", strings.ToUpper(name))
}
`)
	e := NewExtractor(testRegistry())
	chunks := e.Extract("main.go", src)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if got := string(src[c.StartByte:c.EndByte]); got != c.Content {
			t.Errorf("chunk %s: content is not byte-accurate", c.Name)
		}
		if len(c.Imports) != 2 || c.Imports[0] != "fmt" || c.Imports[1] != "strings" {
			t.Errorf("imports = %v, want [fmt strings]", c.Imports)
		}
	}
}

func TestExtractNoDefinitionsYieldsFileChunk(t *testing.T) {
	e := NewExtractor(testRegistry())
	chunks := e.Extract("settings.py", []byte("X = 1\nY = 2\n"))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Kind != KindFile {
		t.Errorf("kind = %q, want %q", c.Kind, KindFile)
	}
	if c.Name != "settings.py" {
		t.Errorf("name = %q, want settings.py", c.Name)
	}
	if c.StartLine > c.EndLine {
		t.Errorf("start_line %d > end_line %d", c.StartLine, c.EndLine)
	}
}

func TestExtractFileChunkRespectsCap(t *testing.T) {
	big := strings.Repeat("X = 1\n", 2000) // well over the cap
	e := NewExtractor(testRegistry())
	chunks := e.Extract("big.py", []byte(big))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0].Content) > FileChunkCap {
		t.Errorf("file chunk length %d exceeds cap %d", len(chunks[0].Content), FileChunkCap)
	}
}

func TestExtractUnknownExtension(t *testing.T) {
	e := NewExtractor(testRegistry())
	chunks := e.Extract("notes.txt", []byte("just some text\n"))

	if len(chunks) != 1 || chunks[0].Kind != KindFile {
		t.Fatalf("expected single file chunk, got %+v", chunks)
	}
	if len(chunks[0].Imports) != 0 {
		t.Errorf("imports = %v, want empty", chunks[0].Imports)
	}
}

func TestExtractMalformedSourceDoesNotFail(t *testing.T) {
	e := NewExtractor(testRegistry())
	chunks := e.Extract("broken.py", []byte("def broken(:\n    pass\n"))
	if len(chunks) == 0 {
		t.Fatal("expected at least the whole-file fallback chunk")
	}
}

func TestExtractFileUnreadable(t *testing.T) {
	e := NewExtractor(testRegistry())
	chunks := e.ExtractFile(filepath.Join(t.TempDir(), "missing.py"))
	if len(chunks) != 0 {
		t.Fatalf("expected empty sequence, got %d chunks", len(chunks))
	}
}

func TestExtractEmptySource(t *testing.T) {
	e := NewExtractor(testRegistry())
	if chunks := e.Extract("empty.py", nil); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty source, got %d", len(chunks))
	}
}
