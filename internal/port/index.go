package port

// Record is one indexed chunk: its vector plus the payload needed to
// answer from it without going back to the source document.
type Record struct {
	ChunkID  string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// ScoredRecord is a search hit. Higher score means more similar.
type ScoredRecord struct {
	Record
	Score float64
}

// VectorIndex persists and searches chunk vectors under named collections.
// All implementations must satisfy identical observable behavior for these
// operations; callers are polymorphic over the backend and never branch on
// its kind.
type VectorIndex interface {
	// Exists reports whether the collection is present and non-empty.
	// A missing collection is false, not an error.
	Exists(collection string) (bool, error)

	// Upsert writes records keyed by chunk ID and returns the number
	// written. Re-upserting the same IDs overwrites; duplicates never
	// accumulate.
	Upsert(collection string, records []Record) (int, error)

	// Query returns up to k records ordered by descending similarity.
	// Ties are broken by insertion order.
	Query(collection string, vector []float32, k int) ([]ScoredRecord, error)

	// Delete removes the collection and all its records.
	Delete(collection string) error

	// Close releases any held network or file handles. Safe to call twice.
	Close() error
}
