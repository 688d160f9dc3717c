package domain

import "errors"

// Domain errors represent distinguished failure kinds. Adapters wrap these
// with fmt.Errorf("...: %w", err); callers check with errors.Is.
var (
	// ErrInvalidConfig indicates malformed configuration, such as a chunk
	// overlap that is not smaller than the chunk size. Fatal at
	// construction time, never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyCorpus indicates the document loader found nothing to index.
	ErrEmptyCorpus = errors.New("no documents found")

	// ErrEmptySplit indicates splitting a non-empty document set produced
	// zero chunks.
	ErrEmptySplit = errors.New("document splitting produced no chunks")

	// ErrRateLimited indicates an upstream provider signalled a quota or
	// throttle condition. Handled with a dedicated user-facing message
	// rather than generic failure text.
	ErrRateLimited = errors.New("rate limited")
)
