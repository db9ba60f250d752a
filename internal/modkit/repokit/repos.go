// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"
	"math/rand"
	"time"

	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction using the provided TxRunner
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// RetryPolicy bounds WithTxRetry
type RetryPolicy struct {
	Attempts int           // <=0 -> 3
	Base     time.Duration // <=0 -> 100ms, doubled per attempt with jitter
}

// sleep is a seam for tests
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithTxRetry reruns the whole transaction while the failure is retryable
// (serialization, deadlock, unavailable). Each attempt is all-or-nothing
func WithTxRetry(ctx context.Context, tx TxRunner, p RetryPolicy, fn func(q Queryer) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	base := p.Base
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = tx.Tx(ctx, fn); err == nil || !perr.Retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		backoff := base << i
		backoff += time.Duration(rand.Int63n(int64(backoff)/2 + 1))
		if serr := sleep(ctx, backoff); serr != nil {
			return perr.FromContext(serr)
		}
	}
	return err
}
