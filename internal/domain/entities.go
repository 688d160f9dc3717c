package domain

// Document is a single source text loaded from the corpus.
// Immutable after loading; rebuilt on every indexing run.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Chunk is a bounded, overlapping slice of a document's text. It is the
// unit of embedding and retrieval.
type Chunk struct {
	ID       string
	DocID    string
	Text     string
	Seq      int
	Metadata map[string]string
}

// Classification is the triage verdict for an incoming query.
type Classification int

const (
	ClassificationUnknown Classification = iota
	ClassificationRelevant
	ClassificationIrrelevant
)

// QueryState tracks where a query is in the orchestration pipeline.
type QueryState int

const (
	StateStart QueryState = iota
	StateTriage
	StateRetrieve
	StateSynthesize
	StateIrrelevant
	StateAnswered
	StateRateLimited
	StateFailed
)

func (s QueryState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateTriage:
		return "triage"
	case StateRetrieve:
		return "retrieve"
	case StateSynthesize:
		return "synthesize"
	case StateIrrelevant:
		return "irrelevant"
	case StateAnswered:
		return "answered"
	case StateRateLimited:
		return "rate_limited"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the pipeline.
func (s QueryState) Terminal() bool {
	switch s {
	case StateIrrelevant, StateAnswered, StateRateLimited, StateFailed:
		return true
	}
	return false
}

// RetrievedChunk is one similarity hit attached to a query context.
type RetrievedChunk struct {
	ChunkID string
	Text    string
	Source  string
	Score   float64
}

// SearchStatus distinguishes a successful search, an empty one, and a
// failed one. An empty result set is not an error.
type SearchStatus int

const (
	SearchFound SearchStatus = iota
	SearchNoResults
	SearchFailed
)

// SearchResult is the structured outcome of a retrieval tool invocation.
// The tool never propagates a failure as a panic or a bare error; failures
// arrive here with Err set so the orchestrator can keep going.
type SearchResult struct {
	Status  SearchStatus
	Context string
	Chunks  []RetrievedChunk
	Err     error
}

// QueryContext carries one query through the orchestration stages.
// Created fresh per query, never persisted.
type QueryContext struct {
	ID        string
	RawQuery  string
	Class     Classification
	Rewritten string
	Retrieved []RetrievedChunk
	Answer    string
	State     QueryState
}
