package index

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"scout/internal/chunker"
	"scout/internal/store"
	"scout/internal/walker"
)

const embedBatchSize = 32

// ProgressFunc reports pipeline progress.
type ProgressFunc func(stage string, done, total int)

// Stats reports indexing results.
type Stats struct {
	FilesTotal   int
	FilesIndexed int
	FilesSkipped int
	ChunksTotal  int
}

// fileChunks is the chunk batch extracted from a single file.
type fileChunks struct {
	relPath string
	chunks  []chunker.CodeChunk
}

// runPipeline walks the tree, extracts and embeds chunks in parallel, and
// replaces the whole collection in one transaction. Chunk embeddings are
// independent, so extraction and embedding fan out across workers; the store
// swap is a single logical unit.
func runPipeline(
	ctx context.Context,
	root string,
	s store.Store,
	extractor *chunker.Extractor,
	registry *chunker.Registry,
	emb Embedder,
	numWorkers int,
	onProgress ProgressFunc,
) (*Stats, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	var filesTotal, filesIndexed atomic.Int64

	// Stage 1: Walk (only files with registered grammars).
	fileCh, walkErrCh := walker.Walk(root, registry.Extensions())

	// Stage 2: Chunk (N workers). Extraction never fails; unreadable files
	// yield no chunks and are counted as skipped.
	chunkCh := make(chan fileChunks, numWorkers)
	var chunkWg sync.WaitGroup
	for range numWorkers {
		chunkWg.Add(1)
		go func() {
			defer chunkWg.Done()
			for fi := range fileCh {
				filesTotal.Add(1)
				src, err := os.ReadFile(fi.Path)
				if err != nil {
					continue
				}
				chunks := extractor.Extract(fi.RelPath, src)
				if len(chunks) == 0 {
					continue
				}
				filesIndexed.Add(1)
				chunkCh <- fileChunks{relPath: fi.RelPath, chunks: chunks}
				if onProgress != nil {
					onProgress("chunking", int(filesIndexed.Load()), int(filesTotal.Load()))
				}
			}
		}()
	}
	go func() {
		chunkWg.Wait()
		close(chunkCh)
	}()

	// Stage 3: Embed (1 worker, sub-batches of embedBatchSize) and collect.
	var allChunks []store.Chunk
	var allEmbeddings [][]float32
	var embedErr error

	for fc := range chunkCh {
		texts := make([]string, len(fc.chunks))
		for i, c := range fc.chunks {
			texts[i] = c.Content
		}

		var vecs [][]float32
		for i := 0; i < len(texts) && embedErr == nil; i += embedBatchSize {
			end := min(i+embedBatchSize, len(texts))
			batch, err := emb.Embed(ctx, texts[i:end])
			if err != nil {
				embedErr = fmt.Errorf("embed %s: %w", fc.relPath, err)
				break
			}
			vecs = append(vecs, batch...)
		}
		if embedErr != nil {
			// Drain remaining batches so the chunk workers can finish.
			continue
		}

		for i, c := range fc.chunks {
			allChunks = append(allChunks, store.Chunk{
				UID:       chunkUID(c.FilePath, c.StartLine, i),
				Path:      c.FilePath,
				Name:      c.Name,
				Kind:      c.Kind,
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
				Content:   c.Content,
				Imports:   chunker.JoinImports(c.Imports),
			})
			allEmbeddings = append(allEmbeddings, vecs[i])
		}
	}

	stats := &Stats{
		FilesTotal:   int(filesTotal.Load()),
		FilesIndexed: int(filesIndexed.Load()),
		ChunksTotal:  len(allChunks),
	}
	stats.FilesSkipped = stats.FilesTotal - stats.FilesIndexed

	if err := <-walkErrCh; err != nil {
		return stats, fmt.Errorf("walk: %w", err)
	}
	if embedErr != nil {
		return stats, embedErr
	}

	// Workers deliver files in arbitrary order; sort for a deterministic
	// collection layout before the swap.
	sortBatch(allChunks, allEmbeddings)

	if err := s.Replace(allChunks, allEmbeddings); err != nil {
		return stats, fmt.Errorf("replace collection: %w", err)
	}
	return stats, nil
}

// chunkUID derives the deterministic chunk id. The ordinal disambiguates
// chunks that start on the same line of the same file.
func chunkUID(relPath string, startLine, ordinal int) string {
	return fmt.Sprintf("%s:%d:%d", relPath, startLine, ordinal)
}

func sortBatch(chunks []store.Chunk, embeddings [][]float32) {
	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return chunks[order[a]].UID < chunks[order[b]].UID
	})

	sortedChunks := make([]store.Chunk, len(chunks))
	sortedEmbeddings := make([][]float32, len(embeddings))
	for i, idx := range order {
		sortedChunks[i] = chunks[idx]
		sortedEmbeddings[i] = embeddings[idx]
	}
	copy(chunks, sortedChunks)
	copy(embeddings, sortedEmbeddings)
}
