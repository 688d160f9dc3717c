package usecase

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// DefaultBatchSize bounds the burst request rate against the embedding
// and storage backends.
const DefaultBatchSize = 50

// Indexer runs the load, split, embed and upsert pipeline for one
// collection. Runs are sequential and throttled on purpose: the upstream
// providers rate-limit, parallelism would only trip that faster.
type Indexer struct {
	loader     port.DocumentLoader
	splitter   port.Splitter
	embedder   port.Embedder
	index      port.VectorIndex
	limiter    port.Pacer
	collection string
	batchSize  int
}

func NewIndexer(
	loader port.DocumentLoader,
	splitter port.Splitter,
	embedder port.Embedder,
	index port.VectorIndex,
	limiter port.Pacer,
	collection string,
	batchSize int,
) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		loader:     loader,
		splitter:   splitter,
		embedder:   embedder,
		index:      index,
		limiter:    limiter,
		collection: collection,
		batchSize:  batchSize,
	}
}

// IndexReport describes what one pipeline run did.
type IndexReport struct {
	Reused         bool
	Documents      int
	Chunks         int
	RecordsWritten int
	Batches        int
}

// ProgressFunc is called after each completed batch with the number of
// chunks processed so far and the total.
type ProgressFunc func(done, total int)

// Run executes one indexing pass. If the collection is already populated
// the run short-circuits and reports Reused without touching the loader
// or the embedding provider; that reuse is the idempotency anchor. A
// failed batch aborts the run, leaving whatever earlier batches wrote in
// place, and the error tells the caller the run must be retried or
// inspected.
func (u *Indexer) Run(ctx context.Context, progress ProgressFunc) (*IndexReport, error) {
	exists, err := u.index.Exists(u.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %q: %w", u.collection, err)
	}
	if exists {
		return &IndexReport{Reused: true}, nil
	}

	docs, err := u.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, u.splitter.Split(doc)...)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptySplit
	}

	report := &IndexReport{
		Documents: len(docs),
		Chunks:    len(chunks),
	}

	for start := 0; start < len(chunks); start += u.batchSize {
		// Inter-batch throttle; the first batch passes immediately.
		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := start + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := u.embedder.Embed(texts)
		if err != nil {
			return report, fmt.Errorf("embedding batch %d failed: %w", report.Batches+1, err)
		}
		if len(vectors) != len(batch) {
			return report, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		records := make([]port.Record, len(batch))
		for i, c := range batch {
			records[i] = port.Record{
				ChunkID:  c.ID,
				Vector:   vectors[i],
				Text:     c.Text,
				Metadata: c.Metadata,
			}
		}

		written, err := u.index.Upsert(u.collection, records)
		if err != nil {
			return report, fmt.Errorf("upsert batch %d failed: %w", report.Batches+1, err)
		}

		report.RecordsWritten += written
		report.Batches++
		if progress != nil {
			progress(end, len(chunks))
		}
	}

	return report, nil
}
