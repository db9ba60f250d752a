package repo

import (
	"context"
	"time"

	"carcrawl/internal/core/listing"
	"carcrawl/internal/modkit/repokit"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
)

// PGStore is a PartitionStore over the listings table. Each append is one transaction
type PGStore struct {
	DB               repokit.TxRunner
	Binder           repokit.Binder[domain.ListingRepo]
	Retry            repokit.RetryPolicy
	StatementTimeout time.Duration
}

var _ domain.PartitionStore = (*PGStore)(nil)

// NewPGStore creates the schema if needed and returns the store
func NewPGStore(ctx context.Context, db repokit.TxRunner, binder repokit.Binder[domain.ListingRepo], stmtTimeout time.Duration) (*PGStore, error) {
	if db == nil {
		return nil, perr.InvalidArgf("pg partition store requires a TxRunner")
	}
	if binder == nil {
		binder = NewPG()
	}
	if err := repokit.MustBind(binder, db).EnsureSchema(ctx); err != nil {
		return nil, perr.WithOp(perr.Storagef(err, "ensure listings schema"), "pg.schema")
	}
	return &PGStore{DB: db, Binder: binder, StatementTimeout: stmtTimeout}, nil
}

// Known selects the partition's ids
func (s *PGStore) Known(ctx context.Context, partition string) ([]int64, error) {
	ids, err := repokit.MustBind(s.Binder, s.DB).KnownIDs(ctx, partition)
	if err != nil {
		if ctx.Err() != nil {
			return nil, perr.FromContext(ctx.Err())
		}
		return nil, perr.WithOp(perr.Storagef(err, "select known ids for %s", partition), "pg.known")
	}
	return ids, nil
}

// Append inserts rows all-or-nothing, retrying serialization and deadlock failures
func (s *PGStore) Append(ctx context.Context, partition string, rows []listing.Listing) error {
	if len(rows) == 0 {
		return nil
	}
	tx := repokit.WithBeginHooks(s.DB, repokit.StatementTimeout(s.StatementTimeout))

	var inserted int64
	err := repokit.WithTxRetry(ctx, tx, s.Retry, func(q repokit.Queryer) error {
		n, err := s.Binder.Bind(q).Insert(ctx, partition, rows)
		inserted = n
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return perr.FromContext(ctx.Err())
		}
		return perr.WithOp(perr.Storagef(err, "append %d rows to %s", len(rows), partition), "pg.append")
	}
	if skipped := int64(len(rows)) - inserted; skipped > 0 {
		logger.C(ctx).Warn().Int64("skipped", skipped).Msg("rows already present in listings")
	}
	return nil
}
