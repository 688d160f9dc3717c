package port

import "docqa/internal/domain"

// DocumentLoader yields documents from a corpus location. An empty corpus
// is an empty slice with a nil error; an I/O failure is an error. The two
// are never conflated.
type DocumentLoader interface {
	Load() ([]domain.Document, error)
}
