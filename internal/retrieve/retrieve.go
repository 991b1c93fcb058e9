package retrieve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"scout/internal/chunker"
	"scout/internal/index"
	"scout/internal/infer"
	"scout/internal/store"
	"scout/internal/walker"
)

// Error kinds recognized by the fallback chain. Stages wrap their causes so
// the degradation reason stays diagnosable instead of being swallowed.
var (
	ErrIndexUnavailable = errors.New("index unavailable")
	ErrQueryFailed      = errors.New("query failed")
)

// fallbackSeparator joins files in the recency-based fallback context.
const fallbackSeparator = "\n\n---\n\n"

// Index is the slice of the indexer the retriever depends on. It is an
// interface so tests can inject fakes.
type Index interface {
	Ready() (bool, error)
	Rebuild(ctx context.Context, root string) (*index.Stats, error)
	Search(ctx context.Context, query string, k int) ([]store.SearchResult, error)
	Keyword(query string, k int) ([]store.SearchResult, error)
	Extensions() map[string]bool
}

// BuildContext assembles a bounded context blob for a query. It tries the
// semantic path first (auto-rebuilding the index if the collection does not
// exist yet) and falls back to recency-based file context on any recognized
// failure. It never fails: the worst case is an empty string.
func BuildContext(ctx context.Context, idx Index, query, root string, maxChunks int) string {
	blob, err := semanticContext(ctx, idx, query, root, maxChunks)
	if err == nil {
		return blob
	}
	if errors.Is(err, ErrIndexUnavailable) || errors.Is(err, ErrQueryFailed) {
		fmt.Fprintf(os.Stderr, "scout: falling back to recency context: %v\n", err)
		return recencyContext(root, idx.Extensions(), maxChunks)
	}
	fmt.Fprintf(os.Stderr, "scout: context retrieval failed: %v\n", err)
	return ""
}

// semanticContext is the primary strategy: inferred-target instruction
// block, then the top-k nearest chunks with headers.
func semanticContext(ctx context.Context, idx Index, query, root string, maxChunks int) (string, error) {
	ready, err := idx.Ready()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if !ready {
		if _, err := idx.Rebuild(ctx, root); err != nil {
			return "", fmt.Errorf("%w: rebuild: %v", ErrIndexUnavailable, err)
		}
	}

	results, err := idx.Search(ctx, query, maxChunks)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	targets := infer.TargetFiles(query, root)

	var b strings.Builder
	if len(targets) > 0 {
		b.WriteString("# IMPORTANT: Inferred target files for this query:\n")
		b.WriteString("# When creating/editing files, use these EXACT paths (preserve subdirectories):\n")
		for _, t := range targets {
			fmt.Fprintf(&b, "#   - %s\n", t)
		}
		b.WriteString("#\n\n")
	}

	if len(results) > 0 {
		b.WriteString("# Relevant code from codebase:\n\n")
		for _, r := range results {
			writeChunkHeader(&b, r.Chunk)
			b.WriteString(truncate(r.Chunk.Content))
			b.WriteString("\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func writeChunkHeader(b *strings.Builder, c store.Chunk) {
	if c.Name != "" && c.Kind != chunker.KindFile {
		fmt.Fprintf(b, "# %s: %s (%s)\n", capitalize(c.Kind), c.Name, c.Path)
	} else {
		fmt.Fprintf(b, "# File: %s\n", c.Path)
	}
}

// recencyContext is the fallback strategy: the most-recently-modified
// filtered source files, each truncated to the size cap.
func recencyContext(root string, exts map[string]bool, maxFiles int) string {
	var parts []string
	for _, fi := range walker.Recent(root, exts, maxFiles) {
		content, err := os.ReadFile(fi.Path)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("# File: %s\n%s", fi.RelPath, truncate(string(content))))
	}
	return strings.Join(parts, fallbackSeparator)
}

// truncate caps a chunk or file body at the extractor's size cap.
func truncate(s string) string {
	if len(s) <= chunker.FileChunkCap {
		return s
	}
	return s[:chunker.FileChunkCap] + "\n\n# ... (truncated)"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
