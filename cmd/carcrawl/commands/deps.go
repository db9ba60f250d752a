package commands

import (
	"context"

	"carcrawl/internal/modkit"
	"carcrawl/internal/modkit/repokit"
	"carcrawl/internal/platform/config"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/platform/store"
	crawlmod "carcrawl/internal/services/crawl/module"
)

// openDeps builds the shared module deps. Postgres is only opened for CRAWL_STORE=pg
func openDeps(ctx context.Context, o crawlmod.Options) (modkit.Deps, func(), error) {
	root := config.New()
	l := logger.Get()
	deps := modkit.Deps{Log: *l, Cfg: root}
	if o.Store != crawlmod.StorePG {
		return deps, func() {}, nil
	}

	pgCfg := root.Prefix("CRAWL_PGSQL_")
	url := pgCfg.MayString("DBURL", "")
	if url == "" {
		return deps, nil, perr.Configf("CRAWL_STORE=pg needs CRAWL_PGSQL_DBURL")
	}
	st, err := store.Open(ctx, store.Config{
		AppName: "carcrawl",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         url,
			MaxConns:    int32(pgCfg.MayPositiveInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		return deps, nil, perr.Wrap(err, perr.ErrorCodeStorage, "open postgres")
	}
	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}
	if err := repokit.Guard(ctx, st); err != nil {
		closeFn()
		return deps, nil, err
	}
	deps.PG = st.PG
	return deps, closeFn, nil
}
