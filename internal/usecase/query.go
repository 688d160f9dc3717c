package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// QuotaAdvisory is returned verbatim whenever any stage hits a provider
// rate limit or quota exhaustion. Callers and tests match on the exact
// string, so it must not change casually.
const QuotaAdvisory = "LLM quota exceeded. Please try again later or switch LLM provider."

// Orchestrator drives one query through triage, retrieval and synthesis.
// Every failure path ends in a user-facing string; the method never
// returns an error because there is always something to say.
type Orchestrator struct {
	llm   port.LLM
	tool  port.SearchTool
	topic string
}

// NewOrchestrator wires the pipeline. topic names the corpus subject
// matter for the prompts, e.g. "income tax law".
func NewOrchestrator(llm port.LLM, tool port.SearchTool, topic string) *Orchestrator {
	if topic == "" {
		topic = "the indexed documents"
	}
	return &Orchestrator{llm: llm, tool: tool, topic: topic}
}

// Answer runs the full pipeline for one query and returns the user-facing
// answer plus the query context for inspection. Cancellation is honored
// between stages; a stage already in flight runs to completion.
func (o *Orchestrator) Answer(ctx context.Context, query string) (string, *domain.QueryContext) {
	qc := &domain.QueryContext{
		ID:       uuid.NewString(),
		RawQuery: query,
		State:    domain.StateStart,
	}

	if err := ctx.Err(); err != nil {
		return o.fail(qc, err)
	}

	// Triage: gate and rewrite in one model call.
	qc.State = domain.StateTriage
	verdict, err := o.llm.GenerateWithSystem(triageSystemPrompt(o.topic), query)
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		qc.State = domain.StateRateLimited
		return QuotaAdvisory, qc
	case err != nil:
		// Fail open: an unreachable triage model must not block a
		// possibly answerable question.
		qc.Class = domain.ClassificationRelevant
		qc.Rewritten = query
	default:
		reason, irrelevant := strings.CutPrefix(strings.TrimSpace(verdict), irrelevantMarker)
		if irrelevant {
			qc.Class = domain.ClassificationIrrelevant
			qc.State = domain.StateIrrelevant
			qc.Answer = strings.TrimSpace(reason)
			if qc.Answer == "" {
				qc.Answer = "This question cannot be answered from the indexed documents."
			}
			return qc.Answer, qc
		}
		qc.Class = domain.ClassificationRelevant
		qc.Rewritten = strings.TrimSpace(verdict)
		if qc.Rewritten == "" {
			qc.Rewritten = query
		}
	}

	if err := ctx.Err(); err != nil {
		return o.fail(qc, err)
	}

	// Retrieval via the search tool. A tool failure is data, not a
	// panic; only a rate-limited failure terminates here.
	qc.State = domain.StateRetrieve
	result := o.tool.Search(qc.Rewritten)
	qc.Retrieved = result.Chunks
	if result.Status == domain.SearchFailed {
		if errors.Is(result.Err, domain.ErrRateLimited) {
			qc.State = domain.StateRateLimited
			return QuotaAdvisory, qc
		}
		return o.fail(qc, result.Err)
	}

	if err := ctx.Err(); err != nil {
		return o.fail(qc, err)
	}

	// Synthesis. An empty retrieval still goes to the model: the
	// context string carries the no-results sentinel and the model is
	// instructed to admit it has nothing.
	qc.State = domain.StateSynthesize
	answer, err := o.llm.GenerateWithSystem(
		synthesisSystemPrompt(o.topic),
		synthesisUserPrompt(query, result.Context),
	)
	if errors.Is(err, domain.ErrRateLimited) {
		qc.State = domain.StateRateLimited
		return QuotaAdvisory, qc
	}
	if err != nil {
		return o.fail(qc, err)
	}

	qc.State = domain.StateAnswered
	qc.Answer = strings.TrimSpace(answer)
	return qc.Answer, qc
}

func (o *Orchestrator) fail(qc *domain.QueryContext, err error) (string, *domain.QueryContext) {
	qc.State = domain.StateFailed
	qc.Answer = fmt.Sprintf("Error while processing query: %v", err)
	return qc.Answer, qc
}
