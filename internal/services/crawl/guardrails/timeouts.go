// Package guardrails holds cross cutting safety helpers for the crawl loop
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for one task.
// Zero values mean no extra timeout at that level; there is never a task deadline
type Timeouts struct {
	// Fetch caps one page fetch on top of the client timeout
	Fetch time.Duration

	// Append caps the durable write of a task's batch
	Append time.Duration
}

// ForFetch returns a sub context for one page fetch bounded by Fetch and any remaining parent budget
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForAppend returns a sub context for the batch append bounded by Append and any remaining parent budget
func ForAppend(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Append)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of d and any parent remainder. Never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
