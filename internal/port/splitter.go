package port

import "docqa/internal/domain"

// Splitter turns a document into an ordered sequence of chunks.
// Deterministic: same document and configuration always yield the same
// chunk sequence.
type Splitter interface {
	Split(doc domain.Document) []domain.Chunk
}
