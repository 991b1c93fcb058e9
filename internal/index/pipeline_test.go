package index

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scout/internal/chunker"
	"scout/internal/chunker/languages"
	"scout/internal/store"
)

// fakeStore records the last Replace call.
type fakeStore struct {
	chunks     []store.Chunk
	embeddings [][]float32
	meta       map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{meta: map[string]string{}} }

func (f *fakeStore) Count() (int, error) { return len(f.chunks), nil }

func (f *fakeStore) Replace(chunks []store.Chunk, embeddings [][]float32) error {
	f.chunks = chunks
	f.embeddings = embeddings
	return nil
}

func (f *fakeStore) Search([]float32, int) ([]store.SearchResult, error) { return nil, nil }

func (f *fakeStore) KeywordSearch(string, int) ([]store.SearchResult, error) { return nil, nil }

func (f *fakeStore) GetMeta(key string) (string, error) { return f.meta[key], nil }

func (f *fakeStore) SetMeta(key, value string) error { f.meta[key] = value; return nil }

func (f *fakeStore) Close() error { return nil }

// fakeEmbedder returns a constant vector per text.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(len(texts[i]))}
	}
	return vecs, nil
}

func (f fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func TestRebuildIdempotent(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"calc.py":     "def add(a, b):\n    return a + b\n\ndef sub(a, b):\n    return a - b\n",
		"pkg/util.py": "class Helper:\n    pass\n",
		"plain.py":    "X = 1\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := chunker.NewRegistry()
	languages.RegisterPython(reg)
	ex := chunker.NewExtractor(reg)

	run := func() []string {
		s := newFakeStore()
		stats, err := runPipeline(context.Background(), root, s, ex, reg, fakeEmbedder{}, 2, nil)
		if err != nil {
			t.Fatal(err)
		}
		if stats.ChunksTotal != len(s.chunks) {
			t.Errorf("stats.ChunksTotal = %d, store got %d", stats.ChunksTotal, len(s.chunks))
		}
		uids := make([]string, len(s.chunks))
		for i, c := range s.chunks {
			uids[i] = c.UID
		}
		return uids
	}

	first := run()
	second := run()
	if len(first) == 0 {
		t.Fatal("expected chunks to be indexed")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("id sets differ between runs:\n%v\n%v", first, second)
	}
}

func TestChunkUIDDeterministic(t *testing.T) {
	a := chunkUID("pkg/util.py", 12, 0)
	b := chunkUID("pkg/util.py", 12, 0)
	if a != b {
		t.Errorf("uid not stable: %q vs %q", a, b)
	}
	if a != "pkg/util.py:12:0" {
		t.Errorf("uid = %q, want pkg/util.py:12:0", a)
	}
}

func TestChunkUIDDisambiguatesSameLine(t *testing.T) {
	a := chunkUID("one_liners.py", 1, 0)
	b := chunkUID("one_liners.py", 1, 1)
	if a == b {
		t.Errorf("chunks starting on the same line must get distinct uids, got %q twice", a)
	}
}

func TestSortBatchKeepsPairsAligned(t *testing.T) {
	chunks := []store.Chunk{
		{UID: "c.py:1:0", Content: "c"},
		{UID: "a.py:1:0", Content: "a"},
		{UID: "b.py:1:0", Content: "b"},
	}
	embeddings := [][]float32{{3}, {1}, {2}}

	sortBatch(chunks, embeddings)

	wantUIDs := []string{"a.py:1:0", "b.py:1:0", "c.py:1:0"}
	wantVals := []float32{1, 2, 3}
	for i := range chunks {
		if chunks[i].UID != wantUIDs[i] {
			t.Errorf("chunks[%d].UID = %q, want %q", i, chunks[i].UID, wantUIDs[i])
		}
		if embeddings[i][0] != wantVals[i] {
			t.Errorf("embeddings[%d] = %v, want %v", i, embeddings[i][0], wantVals[i])
		}
	}
}
