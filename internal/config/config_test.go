package config

import (
	"os"
	"path/filepath"
	"testing"

	"scout/internal/walker"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Ollama.URL != def.Ollama.URL || cfg.Ollama.Model != def.Ollama.Model {
		t.Errorf("cfg = %+v, want defaults", cfg.Ollama)
	}
	if cfg.Retrieve.MaxChunks != def.Retrieve.MaxChunks {
		t.Errorf("max_chunks = %d, want %d", cfg.Retrieve.MaxChunks, def.Retrieve.MaxChunks)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, walker.IndexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte("ollama:\n  url: http://embed.internal:11434\nretrieve:\n  max_chunks: 12\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ollama.URL != "http://embed.internal:11434" {
		t.Errorf("url = %q", cfg.Ollama.URL)
	}
	if cfg.Retrieve.MaxChunks != 12 {
		t.Errorf("max_chunks = %d, want 12", cfg.Retrieve.MaxChunks)
	}
	// Values absent from the file keep their defaults.
	if cfg.Ollama.Model != Default().Ollama.Model {
		t.Errorf("model = %q, want default", cfg.Ollama.Model)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, walker.IndexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ollama: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("expected error for malformed config")
	}
}
