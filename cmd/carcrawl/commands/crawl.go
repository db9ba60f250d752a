package commands

import (
	"os"

	"carcrawl/internal/modkit/module"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
	crawlmod "carcrawl/internal/services/crawl/module"
	"carcrawl/internal/services/crawl/plan"

	"github.com/spf13/cobra"
)

var (
	configPath        string
	fixedPages        int
	rawJSONL          bool
	auto              bool
	maxPages          int
	noStopOnUnchanged bool
	workers           int
)

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&configPath, "config", "", "Task plan (JSON or JSON5); <name>.local.<ext> overrides it")
	f.IntVar(&fixedPages, "pages", 0, "Fixed pages per task; overrides the plan and disables --auto")
	f.BoolVar(&rawJSONL, "raw-jsonl", false, "Also archive raw records under <out-dir>/raw/dt=YYYY-MM-DD (env CRAWL_RAW_JSONL)")
	f.BoolVar(&auto, "auto", false, "Keep paging until the data runs out or nothing new shows up (env CRAWL_AUTO)")
	f.IntVar(&maxPages, "max-pages", 200, "Safety cap on pages per task in --auto mode (env CRAWL_MAX_PAGES)")
	f.BoolVar(&noStopOnUnchanged, "no-stop-on-unchanged", false, "In --auto mode keep going after a page with zero new rows")
	f.IntVar(&workers, "workers", 1, "Partitions crawled in parallel (env CRAWL_WORKERS)")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl --config <tasks.json> [--auto] [--pages N]",
	Short: "Runs every enabled task in the plan and appends new rows to its partition.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := logger.C(ctx)

		if configPath == "" {
			return perr.Configf("--config is required")
		}
		applyCrawlFlags(cmd, &opts)

		p, err := plan.Load(configPath)
		if err != nil {
			return err
		}
		if opts.Pages > 0 {
			p = p.WithPages(opts.Pages)
		}
		opts.Filters = p.Filters
		tasks := p.Enabled()
		log.Info().
			Str("config", configPath).
			Int("tasks", len(tasks)).
			Str("year_range", p.Filters.YearRange).
			Str("price_range", p.Filters.PriceRange).
			Msg("loaded enabled tasks")

		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeStorage, "create %s", opts.OutDir)
		}

		deps, closeDeps, err := openDeps(ctx, opts)
		if err != nil {
			return err
		}
		defer closeDeps()

		m, err := crawlmod.Builder(ctx, opts)(deps)
		if err != nil {
			return err
		}
		module.Register(m.Name(), m.Ports())
		runner := module.MustPortsOf[domain.RunnerPort](m)

		sum, runErr := runner.Run(ctx, tasks)
		renderSummary(cmd.OutOrStdout(), sum)
		log.Info().Int("new_rows", sum.NewRows()).Int("failed", sum.Failures()).Msg("done")
		return runErr
	},
}

// applyCrawlFlags lets explicitly set flags win over CRAWL_* env
func applyCrawlFlags(cmd *cobra.Command, o *crawlmod.Options) {
	f := cmd.Flags()
	if f.Changed("pages") && fixedPages > 0 {
		o.Pages = fixedPages
	}
	if f.Changed("raw-jsonl") {
		o.RawJSONL = rawJSONL
	}
	if f.Changed("auto") {
		o.Auto = auto
	}
	if f.Changed("max-pages") && maxPages > 0 {
		o.MaxPages = maxPages
	}
	if f.Changed("no-stop-on-unchanged") {
		o.StopOnUnchanged = !noStopOnUnchanged
	}
	if f.Changed("workers") && workers > 0 {
		o.Workers = workers
	}
}
