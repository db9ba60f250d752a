//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"carcrawl/internal/platform/store/pgtest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// openTest opens a client against dsn and closes it on cleanup
func openTest(t *testing.T, dsn string, mutate func(*pgxpool.Config)) *PG {
	t.Helper()
	p, err := Open(context.Background(), Config{URL: dsn}, nil, mutate)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestOpen_And_BasicQueries_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	appName := "carcrawl-pg-integration"

	p := openTest(t, dsn, func(pc *pgxpool.Config) {
		if pc.ConnConfig.RuntimeParams == nil {
			pc.ConnConfig.RuntimeParams = map[string]string{}
		}
		pc.ConnConfig.RuntimeParams["application_name"] = appName
		pc.MinConns = 1
	})

	// temp tables live per session, so stay on one conn
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, `create temporary table seen (partition text, item_id bigint, primary key (partition, item_id))`); err != nil {
		t.Fatalf("create temp table failed: %v", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`insert into seen (partition, item_id) values ($1,$2)`, "toyota_camry", int64(4001))
	batch.Queue(`insert into seen (partition, item_id) values ($1,$2)`, "toyota_camry", int64(4002))
	batch.Queue(`insert into seen (partition, item_id) values ($1,$2) on conflict do nothing`, "toyota_camry", int64(4001))
	br := conn.SendBatch(ctx, batch)
	for i := 0; i < 3; i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			t.Fatalf("batch exec %d failed: %v", i, err)
		}
	}
	if err := br.Close(); err != nil {
		t.Fatalf("batch close: %v", err)
	}

	rows, err := conn.Query(ctx, `select item_id from seen where partition = $1 order by item_id`, "toyota_camry")
	if err != nil {
		t.Fatalf("query rows: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 2 || got[0] != 4001 || got[1] != 4002 {
		t.Fatalf("unexpected ids: %v", got)
	}

	var gotApp string
	if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&gotApp); err != nil {
		t.Fatalf("check app name: %v", err)
	}
	if gotApp != appName {
		t.Fatalf("application_name mismatch: got %q want %q", gotApp, appName)
	}
}
