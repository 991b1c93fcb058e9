package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scout/internal/config"
	"scout/internal/index"
	"scout/internal/walker"
)

var (
	flagDB     string
	flagOllama string
	flagModel  string
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Codebase context retrieval for code generation",
	Long: `scout indexes a codebase with tree-sitter and embeddings and retrieves
relevant source context for natural-language requests.`,
}

func Execute() {
	// Best-effort: OLLAMA_URL etc. may live in a local .env.
	godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default <root>/.scout/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "", "ollama base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "embedding model (default from config)")
}

// resolveRoot turns an optional positional argument into an absolute root
// directory, defaulting to the working directory.
func resolveRoot(args []string, pos int) (string, error) {
	if len(args) > pos {
		return filepath.Abs(args[pos])
	}
	return os.Getwd()
}

// loadConfig merges the root's config file with flag and env overrides.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		cfg.Ollama.URL = url
	}
	if flagOllama != "" {
		cfg.Ollama.URL = flagOllama
	}
	if flagModel != "" {
		cfg.Ollama.Model = flagModel
	}
	return cfg, nil
}

// openIndexer builds the shared resource bundle for a root directory.
func openIndexer(root string, cfg *config.Config, progress index.ProgressFunc) (*index.Indexer, error) {
	dbPath := flagDB
	if dbPath == "" {
		dbPath = filepath.Join(root, walker.IndexDirName, "index.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return index.New(index.Config{
		DBPath:    dbPath,
		OllamaURL: cfg.Ollama.URL,
		Model:     cfg.Ollama.Model,
		Workers:   cfg.Index.Workers,
		Progress:  progress,
	})
}
