package port

import "context"

// Pacer spaces successive calls against a throttled upstream. Wait
// blocks until the next call may proceed or the context is done.
type Pacer interface {
	Wait(ctx context.Context) error
}
