package repokit

import (
	"context"

	"carcrawl/internal/platform/store"
)

type fakeQ struct {
	execs    []string
	lastArgs []any
	execErr  error
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.lastArgs = append([]any(nil), args...)
	return nil, f.execErr
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.execs = append(f.execs, sql)
	return nil, nil
}

func (f *fakeQ) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	f.execs = append(f.execs, sql)
	return nil
}

// fakeTx hands its own fakeQ to fn; results pops one error per Tx call
type fakeTx struct {
	fakeQ
	txQ     *fakeQ
	txCalls int
	results []error
}

func (f *fakeTx) Tx(_ context.Context, fn func(q Queryer) error) error {
	f.txCalls++
	if err := fn(f.txQ); err != nil {
		return err
	}
	if len(f.results) == 0 {
		return nil
	}
	err := f.results[0]
	f.results = f.results[1:]
	return err
}

var (
	_ Queryer  = (*fakeQ)(nil)
	_ TxRunner = (*fakeTx)(nil)
)
