// Package module provides the crawl module implementation
package module

import (
	"context"

	"carcrawl/internal/adapters/ingest/upstream"
	"carcrawl/internal/core/normalize"
	"carcrawl/internal/modkit"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/services/crawl/archive"
	"carcrawl/internal/services/crawl/domain"
	"carcrawl/internal/services/crawl/guardrails"
	"carcrawl/internal/services/crawl/ingest"
	"carcrawl/internal/services/crawl/repo"
	"carcrawl/internal/services/crawl/service"
)

// Ports defines the crawl module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the crawl module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the crawl module.
// It wires the upstream client, the partition store picked by opts.Store and the service
func New(ctx context.Context, deps modkit.Deps, opts Options) (*Module, error) {
	client := upstream.NewClient(upstream.Options{
		BaseURL:     opts.BaseURL,
		Timeout:     opts.HTTPTimeout,
		InsecureTLS: opts.InsecureTLS,
	})

	st, err := newStore(ctx, deps, opts)
	if err != nil {
		return nil, err
	}

	var ar domain.Archive
	if opts.RawJSONL {
		ar = archive.NewJSONL(opts.RawDir())
	}

	svc := service.New(
		ingest.NewFetcher(client),
		ingest.NewExtractor(),
		ingest.NewNormalizer(normalize.Default()),
		st, ar,
		serviceConfig(opts),
	)

	deps.Log.Debug().
		Str("store", opts.Store).
		Str("out_dir", opts.OutDir).
		Bool("raw_jsonl", opts.RawJSONL).
		Str("base_url", client.BaseURL()).
		Msg("crawl module wired")

	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

func serviceConfig(opts Options) service.Config {
	return service.Config{
		Filters:         opts.Filters,
		Mode:            opts.Mode(),
		MaxPages:        opts.MaxPages,
		Sleep:           opts.Sleep,
		StopOnUnchanged: opts.StopOnUnchanged,
		Workers:         opts.Workers,
		Timeouts: guardrails.Timeouts{
			Fetch:  opts.FetchTimeout,
			Append: opts.AppendTimeout,
		},
	}
}

// Builder adapts New to modkit.Builder
func Builder(ctx context.Context, opts Options) modkit.Builder {
	return func(deps modkit.Deps) (modkit.Module, error) {
		return New(ctx, deps, opts)
	}
}

func newStore(ctx context.Context, deps modkit.Deps, opts Options) (domain.PartitionStore, error) {
	switch opts.Store {
	case StorePG:
		if !deps.HasPG() {
			return nil, perr.Configf("CRAWL_STORE=pg needs CRAWL_PGSQL_DBURL")
		}
		return repo.NewPGStore(ctx, deps.PG, repo.NewPG(), opts.StatementTimeout)
	case StoreCSV, "":
		return repo.NewCSV(opts.OutDir), nil
	}
	return nil, perr.Configf("unknown store %q", opts.Store)
}

// Name returns the module name
func (m *Module) Name() string { return "crawl" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }
