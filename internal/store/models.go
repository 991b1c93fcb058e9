package store

// Chunk is an indexed code chunk as persisted in the store. UID is the
// deterministic id derived from the chunk's file path, start line, and
// ordinal within the file. Imports holds the serialized (comma-joined)
// module references of the chunk's file.
type Chunk struct {
	UID       string
	Path      string
	Name      string
	Kind      string
	StartLine int
	EndLine   int
	Content   string
	Imports   string
}

// SearchResult is a chunk with its cosine distance to the query. Keyword
// (FTS) matches carry a zero distance.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}
