// Package service provides the crawl service implementation
package service

import (
	"context"
	"sync"
	"time"

	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
	"carcrawl/internal/services/crawl/guardrails"
)

// Config holds options for the crawl service
type Config struct {
	Filters         domain.Filters
	Mode            domain.Mode
	MaxPages        int           // open mode cap; <=0 -> 200
	Sleep           time.Duration // pacing between fetches; <0 -> 0
	StopOnUnchanged bool
	Workers         int // partitions crawled in parallel; <=0 -> 1

	Timeouts guardrails.Timeouts
}

// Service runs crawl tasks against the upstream and appends new rows per partition
type Service struct {
	Fetch   domain.Fetcher
	Extract domain.Extractor
	Norm    domain.Normalizer
	Store   domain.PartitionStore
	Archive domain.Archive // nil disables the raw archive
	Cfg     Config
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the crawl service
func New(
	f domain.Fetcher,
	ex domain.Extractor,
	n domain.Normalizer,
	st domain.PartitionStore,
	ar domain.Archive,
	cfg Config,
) *Service {
	if f == nil || ex == nil || n == nil {
		panic("crawl.Service requires a fetcher, extractor and normalizer")
	}
	if st == nil {
		panic("crawl.Service requires a non nil PartitionStore")
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.Sleep < 0 {
		cfg.Sleep = 0
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Mode != domain.ModeOpen {
		cfg.Mode = domain.ModeFixed
	}
	return &Service{Fetch: f, Extract: ex, Norm: n, Store: st, Archive: ar, Cfg: cfg}
}

// Run executes tasks. Tasks sharing a partition run in order on one worker, so no two
// workers ever append to the same partition. Task failures are reported in the summary;
// the returned error is only set when ctx ended before every task finished
func (s *Service) Run(ctx context.Context, tasks []domain.Task) (domain.RunSummary, error) {
	out := domain.RunSummary{RunID: logger.RunID(ctx), Tasks: make([]domain.TaskSummary, len(tasks))}
	groups := groupByPartition(tasks)
	w := min(s.Cfg.Workers, max(len(groups), 1))

	log := logger.C(ctx)
	log.Info().
		Int("tasks", len(tasks)).
		Int("partitions", len(groups)).
		Int("workers", w).
		Str("mode", string(s.Cfg.Mode)).
		Msg("crawl run start")

	work := make(chan []int)
	var wg sync.WaitGroup
	for i := 0; i < w; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idxs := range work {
				for _, ix := range idxs {
					out.Tasks[ix] = s.RunTask(ctx, tasks[ix])
				}
			}
		}()
	}

	sent := 0
feed:
	for _, g := range groups {
		select {
		case <-ctx.Done():
			break feed
		case work <- g:
			sent++
		}
	}
	close(work)
	wg.Wait()

	for _, g := range groups[sent:] {
		for _, ix := range g {
			out.Tasks[ix] = skipped(tasks[ix], s.Cfg.Mode, ctx.Err())
		}
	}

	log.Info().
		Int("new_rows", out.NewRows()).
		Int("failed", out.Failures()).
		Msg("crawl run done")

	if err := ctx.Err(); err != nil {
		return out, perr.FromContext(err)
	}
	return out, nil
}

// groupByPartition buckets task indexes by partition, in first appearance order
func groupByPartition(tasks []domain.Task) [][]int {
	pos := map[string]int{}
	var groups [][]int
	for i, t := range tasks {
		k := t.Partition()
		g, ok := pos[k]
		if !ok {
			g = len(groups)
			pos[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func skipped(t domain.Task, mode domain.Mode, cause error) domain.TaskSummary {
	return domain.TaskSummary{
		Task:      t,
		Partition: t.Partition(),
		Mode:      mode,
		Stop:      domain.StopCanceled,
		Err:       perr.FromContext(cause),
	}
}
