package retrieve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"scout/internal/store"
	"scout/internal/walker"
)

// Result is a ranked search hit. Matches is only set for results produced
// by the substring fallback scan.
type Result struct {
	File      string
	Kind      string
	Name      string
	Content   string
	StartLine int
	Distance  float64
	Matches   int
}

// Search queries the index for the top-k chunks, auto-rebuilding it when
// the collection does not exist. On any recognized failure it degrades to a
// naive substring scan over the filtered files; it never fails.
func Search(ctx context.Context, idx Index, query, root string, k int) []Result {
	results, err := semanticSearch(ctx, idx, query, root, k)
	if err == nil {
		return results
	}
	if errors.Is(err, ErrIndexUnavailable) || errors.Is(err, ErrQueryFailed) {
		fmt.Fprintf(os.Stderr, "scout: falling back to substring search: %v\n", err)
		return substringSearch(query, root, idx.Extensions(), k)
	}
	fmt.Fprintf(os.Stderr, "scout: search failed: %v\n", err)
	return nil
}

func semanticSearch(ctx context.Context, idx Index, query, root string, k int) ([]Result, error) {
	ready, err := idx.Ready()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if !ready {
		if _, err := idx.Rebuild(ctx, root); err != nil {
			return nil, fmt.Errorf("%w: rebuild: %v", ErrIndexUnavailable, err)
		}
	}

	merged, err := Hybrid(ctx, idx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	results := make([]Result, 0, len(merged))
	for _, r := range merged {
		results = append(results, Result{
			File:      r.Chunk.Path,
			Kind:      r.Chunk.Kind,
			Name:      r.Chunk.Name,
			Content:   r.Chunk.Content,
			StartLine: r.Chunk.StartLine,
			Distance:  r.Distance,
		})
	}
	return results, nil
}

// Hybrid runs both keyword and vector similarity search, then merges and
// deduplicates results with keyword matches first. Keyword errors are
// non-fatal; vector search errors are not.
func Hybrid(ctx context.Context, idx Index, query string, k int) ([]store.SearchResult, error) {
	ftsResults, ftsErr := idx.Keyword(query, k)
	if ftsErr != nil {
		ftsResults = nil
	}

	vecResults, err := idx.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	seen := make(map[string]bool)
	var merged []store.SearchResult
	for _, r := range ftsResults {
		if !seen[r.Chunk.UID] {
			seen[r.Chunk.UID] = true
			merged = append(merged, r)
		}
	}
	for _, r := range vecResults {
		if !seen[r.Chunk.UID] {
			seen[r.Chunk.UID] = true
			merged = append(merged, r)
		}
	}

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// substringSearch is the last-resort strategy: a case-insensitive substring
// scan over the filtered source files.
func substringSearch(query, root string, exts map[string]bool, k int) []Result {
	needle := strings.ToLower(query)
	var results []Result
	for _, fi := range walker.List(root, exts) {
		if len(results) >= k {
			break
		}
		content, err := os.ReadFile(fi.Path)
		if err != nil {
			continue
		}
		n := strings.Count(strings.ToLower(string(content)), needle)
		if n == 0 {
			continue
		}
		results = append(results, Result{
			File:    fi.RelPath,
			Kind:    "file",
			Content: truncate(string(content)),
			Matches: n,
		})
	}
	return results
}
