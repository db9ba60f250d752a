package guardrails

import (
	"context"
	"time"
)

// Sleep waits d or until ctx ends. It returns ctx.Err() when interrupted
var Sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
