package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestWithBeginHooks_RunsInOrderBeforeFn(t *testing.T) {
	t.Parallel()

	inner := &fakeTx{txQ: &fakeQ{}}
	var seq []string
	h := func(name string) BeginHook {
		return func(_ context.Context, q Queryer) error {
			if q != inner.txQ {
				t.Fatalf("%s got non-tx Queryer", name)
			}
			seq = append(seq, name)
			return nil
		}
	}

	err := WithBeginHooks(inner, h("a"), h("b")).Tx(context.Background(), func(Queryer) error {
		seq = append(seq, "fn")
		return nil
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "fn"}, seq); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestWithBeginHooks_HookErrorSkipsFn(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	inner := &fakeTx{txQ: &fakeQ{}}
	ran := false
	err := WithBeginHooks(inner, func(context.Context, Queryer) error { return boom }).
		Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestWithBeginHooks_Delegates(t *testing.T) {
	t.Parallel()

	inner := &fakeTx{txQ: &fakeQ{}}
	r := WithBeginHooks(inner)
	ctx := context.Background()
	_, _ = r.Exec(ctx, "UPDATE x SET a=$1", 7)
	_, _ = r.Query(ctx, "SELECT a FROM x")
	_ = r.QueryRow(ctx, "SELECT 1")

	want := []string{"UPDATE x SET a=$1", "SELECT a FROM x", "SELECT 1"}
	if diff := cmp.Diff(want, inner.execs); diff != "" {
		t.Fatalf("delegation mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{7}, inner.lastArgs); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestStatementTimeout(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	if err := StatementTimeout(1500*time.Millisecond)(context.Background(), q); err != nil {
		t.Fatalf("hook: %v", err)
	}
	if diff := cmp.Diff([]string{"SET LOCAL statement_timeout = 1500"}, q.execs); diff != "" {
		t.Fatalf("sql mismatch (-want +got):\n%s", diff)
	}

	q = &fakeQ{}
	_ = StatementTimeout(0)(context.Background(), q)
	if len(q.execs) != 0 {
		t.Fatalf("zero timeout should not issue SQL, got %v", q.execs)
	}
}
