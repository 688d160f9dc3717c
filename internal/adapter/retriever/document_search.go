package retriever

import (
	"fmt"
	"strings"

	"docqa/internal/adapter/cache"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// NoResultsMessage is the sentinel context returned when the index holds
// nothing relevant. Distinguishable from a failed search.
const NoResultsMessage = "No relevant information found in the documents."

const resultSeparator = "\n\n---\n\n"

// DocumentSearch embeds a query, runs a similarity search against the
// vector index and formats the hits into a bounded context string. It is
// invoked as a tool inside the query orchestration and therefore never
// returns a bare error: every outcome is a structured SearchResult.
type DocumentSearch struct {
	embedder   port.Embedder
	index      port.VectorIndex
	collection string
	topK       int
	maxExcerpt int
	cache      *cache.QueryCache
}

// NewDocumentSearch creates the search tool. The cache is optional; pass
// nil to disable result caching.
func NewDocumentSearch(embedder port.Embedder, index port.VectorIndex, collection string, topK, maxExcerpt int, qc *cache.QueryCache) *DocumentSearch {
	if topK <= 0 {
		topK = 5
	}
	if maxExcerpt <= 0 {
		maxExcerpt = 800
	}
	return &DocumentSearch{
		embedder:   embedder,
		index:      index,
		collection: collection,
		topK:       topK,
		maxExcerpt: maxExcerpt,
		cache:      qc,
	}
}

// Search runs the retrieval. Backend failures come back as
// SearchFailed with Err set; an empty result set as SearchNoResults.
func (t *DocumentSearch) Search(query string) domain.SearchResult {
	if t.cache != nil {
		if chunks, hit := t.cache.Get(query, t.topK); hit {
			return t.found(chunks)
		}
	}

	vectors, err := t.embedder.Embed([]string{query})
	if err != nil {
		return t.failed(fmt.Errorf("failed to embed query: %w", err))
	}
	if len(vectors) == 0 {
		return t.failed(fmt.Errorf("embedder returned no vector for query"))
	}

	hits, err := t.index.Query(t.collection, vectors[0], t.topK)
	if err != nil {
		return t.failed(fmt.Errorf("vector search failed: %w", err))
	}

	if len(hits) == 0 {
		return domain.SearchResult{
			Status:  domain.SearchNoResults,
			Context: NoResultsMessage,
		}
	}

	chunks := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, domain.RetrievedChunk{
			ChunkID: hit.ChunkID,
			Text:    hit.Text,
			Source:  hit.Metadata["source"],
			Score:   hit.Score,
		})
	}

	if t.cache != nil {
		t.cache.Put(query, t.topK, chunks)
	}

	return t.found(chunks)
}

func (t *DocumentSearch) found(chunks []domain.RetrievedChunk) domain.SearchResult {
	return domain.SearchResult{
		Status:  domain.SearchFound,
		Context: t.formatContext(chunks),
		Chunks:  chunks,
	}
}

func (t *DocumentSearch) failed(err error) domain.SearchResult {
	return domain.SearchResult{
		Status:  domain.SearchFailed,
		Context: fmt.Sprintf("Error searching documents: %v", err),
		Err:     err,
	}
}

// formatContext renders hits in index order, each tagged with its source
// and capped to the excerpt limit.
func (t *DocumentSearch) formatContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		source := c.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("Source: %s\n%s", source, t.excerpt(c.Text)))
	}
	return strings.Join(parts, resultSeparator)
}

func (t *DocumentSearch) excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= t.maxExcerpt {
		return text
	}
	return string(runes[:t.maxExcerpt]) + "..."
}
