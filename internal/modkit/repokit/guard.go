package repokit

import (
	"context"
	"time"

	perr "carcrawl/internal/platform/errors"
)

type guarder interface {
	Guard(context.Context) error
}

// Ping checks a dependency answers within 5s unless ctx already has a deadline
func Ping(ctx context.Context, name string, p interface{ Ping(context.Context) error }) error {
	if p == nil {
		return perr.Unavailablef("%s: nil dependency", name)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s ping failed", name)
	}
	return nil
}

// Guard runs st.Guard and maps failure to Unavailable
func Guard(ctx context.Context, st guarder) error {
	if err := st.Guard(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "dependency guard failed")
	}
	return nil
}
