package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"scout/internal/walker"
)

// Config holds all configuration for scout. It lives at
// <root>/.scout/config.yaml; a missing file means defaults.
type Config struct {
	Ollama   OllamaConfig   `yaml:"ollama"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
}

// OllamaConfig holds embedding provider settings.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// IndexConfig holds indexing settings.
type IndexConfig struct {
	Workers        int `yaml:"workers"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// RetrieveConfig holds retrieval settings.
type RetrieveConfig struct {
	MaxChunks      int `yaml:"max_chunks"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "nomic-embed-text",
		},
		Index: IndexConfig{
			Workers:        runtime.NumCPU(),
			TimeoutSeconds: 600,
		},
		Retrieve: RetrieveConfig{
			MaxChunks:      5,
			TimeoutSeconds: 60,
		},
	}
}

// Load reads the config under root, falling back to defaults when the file
// is absent. Values missing from the file keep their defaults.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, walker.IndexDirName, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
