package splitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"docqa/internal/domain"
)

// Splitter cuts document text into overlapping fixed-size windows.
// Chunk i+1 starts at end(i) - overlap, so the last overlap runes of a
// chunk equal the first overlap runes of the next one.
type Splitter struct {
	maxSize int
	overlap int
}

// New creates a splitter. The overlap must be smaller than the chunk size;
// anything else is a configuration error, not a runtime data error.
func New(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", maxSize, domain.ErrInvalidConfig)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("overlap %d must be non-negative and smaller than chunk size %d: %w", overlap, maxSize, domain.ErrInvalidConfig)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// Split produces the ordered chunk sequence for a document. Windows are
// measured in runes so multi-byte text never splits mid-character. The
// result is deterministic for a given document and configuration.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil
	}

	step := s.maxSize - s.overlap
	var chunks []domain.Chunk

	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + s.maxSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(doc.ID, seq),
			DocID:    doc.ID,
			Text:     string(runes[start:end]),
			Seq:      seq,
			Metadata: copyMetadata(doc.Metadata),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// chunkID derives a stable ID from the document and sequence index, the
// anchor for idempotent re-indexing.
func chunkID(docID string, seq int) string {
	data := fmt.Sprintf("%s:%d", docID, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
