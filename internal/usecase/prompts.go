package usecase

import "fmt"

// The triage prompt makes the model do two jobs in one call: gate the
// query against the corpus domain and rewrite it into a focused search
// query. The marker protocol keeps the response machine-parseable
// without structured output support.
const irrelevantMarker = "IRRELEVANT:"

func triageSystemPrompt(topic string) string {
	return fmt.Sprintf(`You are a query triage assistant for a question answering system over documents about %s.

Given a user question, do exactly one of the following:
- If the question is unrelated to %s, respond with a single line starting with "%s" followed by a one-sentence explanation of why it cannot be answered from these documents.
- Otherwise, respond with a single rewritten search query that captures the question's intent, optimized for semantic similarity search. Respond with the query text only, no quotes, no explanation.`, topic, topic, irrelevantMarker)
}

func synthesisSystemPrompt(topic string) string {
	return fmt.Sprintf(`You are an assistant answering questions about %s using only the provided document excerpts.

Rules:
- Base your answer strictly on the excerpts. Do not use outside knowledge.
- If the excerpts do not contain the answer, say so plainly.
- Cite the source file names you relied on.
- Be concise and direct.`, topic)
}

func synthesisUserPrompt(question, excerpts string) string {
	return fmt.Sprintf("Document excerpts:\n\n%s\n\nQuestion: %s", excerpts, question)
}
