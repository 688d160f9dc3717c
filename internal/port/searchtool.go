package port

import "docqa/internal/domain"

// SearchTool is the retrieval capability the orchestrator invokes. It
// always returns a structured result; a failed lookup must not crash the
// surrounding orchestration.
type SearchTool interface {
	Search(query string) domain.SearchResult
}
