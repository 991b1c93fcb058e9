package index

import (
	"context"
	"fmt"
	"os"
	"sync"

	"scout/internal/chunker"
	"scout/internal/chunker/languages"
	"scout/internal/embedder"
	"scout/internal/store"
)

// Config holds the indexer configuration.
type Config struct {
	DBPath    string
	OllamaURL string
	Model     string
	Workers   int
	// Progress, if set, is called as files are indexed.
	Progress ProgressFunc
}

// Embedder encodes text into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Indexer bundles the store, embedder, and parser resources. It is
// constructed once and passed by reference; a readers-writer lock keeps
// rebuilds exclusive of concurrent searches.
type Indexer struct {
	mu        sync.RWMutex
	store     store.Store
	embedder  Embedder
	extractor *chunker.Extractor
	registry  *chunker.Registry
	config    Config
}

// New creates a new Indexer with the given configuration.
func New(cfg Config) (*Indexer, error) {
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	reg := chunker.NewRegistry()
	languages.RegisterGo(reg)
	languages.RegisterJavaScript(reg)
	languages.RegisterTypeScript(reg)
	languages.RegisterPython(reg)

	return &Indexer{
		store:     s,
		embedder:  embedder.NewOllamaEmbedder(cfg.OllamaURL, cfg.Model),
		extractor: chunker.NewExtractor(reg),
		registry:  reg,
		config:    cfg,
	}, nil
}

// Rebuild performs a full rebuild of the index for the tree rooted at root.
// The previous collection is replaced in a single transaction; there is no
// incremental path. Rebuilding an unchanged tree is idempotent.
func (idx *Indexer) Rebuild(ctx context.Context, root string) (*Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	lastModel, err := idx.store.GetMeta("embedding_model")
	if err != nil {
		return nil, fmt.Errorf("get meta: %w", err)
	}
	if lastModel != "" && lastModel != idx.config.Model {
		fmt.Fprintf(os.Stderr, "embedding model changed from %q to %q\n", lastModel, idx.config.Model)
	}

	stats, err := runPipeline(ctx, root, idx.store, idx.extractor, idx.registry, idx.embedder, idx.config.Workers, idx.config.Progress)
	if err != nil {
		return stats, err
	}

	if err := idx.store.SetMeta("embedding_model", idx.config.Model); err != nil {
		return stats, fmt.Errorf("set meta: %w", err)
	}
	return stats, nil
}

// Ready reports whether the index holds at least one chunk.
func (idx *Indexer) Ready() (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n, err := idx.store.Count()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Search finds the top-k chunks closest to the query by cosine distance.
func (idx *Indexer) Search(ctx context.Context, query string, k int) ([]store.SearchResult, error) {
	vec, err := idx.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.Search(vec, k)
}

// Keyword finds up to k chunks by full-text relevance.
func (idx *Indexer) Keyword(query string, k int) ([]store.SearchResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.KeywordSearch(query, k)
}

// Extensions returns the file extensions the indexer can parse.
func (idx *Indexer) Extensions() map[string]bool {
	return idx.registry.Extensions()
}

// Extractor returns the shared chunk extractor.
func (idx *Indexer) Extractor() *chunker.Extractor {
	return idx.extractor
}

// Registry returns the shared language registry.
func (idx *Indexer) Registry() *chunker.Registry {
	return idx.registry
}

// Close releases resources.
func (idx *Indexer) Close() error {
	return idx.store.Close()
}
