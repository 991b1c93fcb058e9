package store

import (
	"database/sql"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Store persists indexed chunks and their embeddings and answers
// nearest-neighbor and keyword queries over them.
type Store interface {
	// Count returns the number of indexed chunks.
	Count() (int, error)
	// Replace atomically swaps the whole collection for the given chunks
	// and embeddings. Readers never observe a partially populated index.
	Replace(chunks []Chunk, embeddings [][]float32) error
	// Search finds the top-k chunks closest to the query embedding,
	// ordered by ascending cosine distance.
	Search(queryEmbedding []float32, k int) ([]SearchResult, error)
	// KeywordSearch finds up to k chunks by full-text relevance.
	KeywordSearch(query string, k int) ([]SearchResult, error)
	// GetMeta returns a metadata value by key, or "" if not set.
	GetMeta(key string) (string, error)
	// SetMeta sets a metadata key-value pair.
	SetMeta(key, value string) error
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite + sqlite-vec.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Replace(chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatched chunks (%d) and embeddings (%d)", len(chunks), len(embeddings))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"vec_chunks", "chunks_fts", "chunks"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	chunkStmt, err := tx.Prepare(
		"INSERT INTO chunks (uid, path, name, kind, start_line, end_line, content, imports) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.Prepare("INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer vecStmt.Close()

	ftsStmt, err := tx.Prepare("INSERT INTO chunks_fts (uid, path, name, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer ftsStmt.Close()

	for i, c := range chunks {
		res, err := chunkStmt.Exec(c.UID, c.Path, c.Name, c.Kind, c.StartLine, c.EndLine, c.Content, c.Imports)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.UID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", c.UID, err)
		}
		if _, err := vecStmt.Exec(id, blob); err != nil {
			return fmt.Errorf("insert embedding for %s: %w", c.UID, err)
		}

		if _, err := ftsStmt.Exec(c.UID, c.Path, c.Name, c.Content); err != nil {
			return fmt.Errorf("insert fts row for %s: %w", c.UID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Search(queryEmbedding []float32, k int) ([]SearchResult, error) {
	blob, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}
	rows, err := s.db.Query(`
		SELECT v.distance, c.uid, c.path, c.name, c.kind, c.start_line, c.end_line, c.content, c.imports
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ?
		ORDER BY v.distance
		LIMIT ?
	`, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows, true)
}

func (s *SQLiteStore) KeywordSearch(query string, k int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT 0, c.uid, c.path, c.name, c.kind, c.start_line, c.end_line, c.content, c.imports
		FROM chunks_fts f
		JOIN chunks c ON c.uid = f.uid
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows, false)
}

func scanResults(rows *sql.Rows, withDistance bool) ([]SearchResult, error) {
	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		err := rows.Scan(
			&r.Distance,
			&r.Chunk.UID, &r.Chunk.Path, &r.Chunk.Name, &r.Chunk.Kind,
			&r.Chunk.StartLine, &r.Chunk.EndLine, &r.Chunk.Content, &r.Chunk.Imports,
		)
		if err != nil {
			return nil, err
		}
		if !withDistance {
			r.Distance = 0
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes each term so user input can't break FTS5 query syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f != "" {
			terms = append(terms, `"`+f+`"`)
		}
	}
	return strings.Join(terms, " ")
}

func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
