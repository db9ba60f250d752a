package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"carcrawl/internal/core/listing"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
	"carcrawl/internal/services/crawl/guardrails"
	"carcrawl/internal/services/crawl/ledger"
)

// RunTask crawls one task: rehydrate the ledger, loop pages, then append the new rows once.
// An interrupted task appends nothing
func (s *Service) RunTask(ctx context.Context, t domain.Task) domain.TaskSummary {
	start := time.Now()
	part := t.Partition()
	ctx = logger.WithPartition(ctx, part)
	log := logger.C(ctx)

	sum := domain.TaskSummary{Task: t, Partition: part, Mode: s.Cfg.Mode}

	known, err := s.Store.Known(ctx, part)
	if err != nil {
		sum.Stop, sum.Err, sum.Elapsed = domain.StopError, err, time.Since(start)
		if ctx.Err() != nil {
			sum.Stop, sum.Err = domain.StopCanceled, perr.FromContext(ctx.Err())
		}
		log.Error().Err(err).Msg("load existing ids failed")
		return sum
	}
	led := ledger.New(known)
	sum.Existing = led.Existing()

	log.Info().
		Str("task", t.Label()).
		Str("mode", string(s.Cfg.Mode)).
		Int("pages", t.Pages).
		Int("existing", sum.Existing).
		Msg("task start")

	ctrl := NewController(s.Cfg.Mode, t.Pages, s.Cfg.MaxPages, s.Cfg.StopOnUnchanged)
	var batch []listing.Listing

	for {
		page, ok := ctrl.Begin()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			ctrl.Canceled()
			sum.Err = perr.FromContext(err)
			break
		}

		body, err := s.fetch(ctx, s.request(t, page))
		sum.Pages++
		if err != nil {
			if ctx.Err() != nil {
				ctrl.Canceled()
				sum.Err = perr.FromContext(ctx.Err())
				break
			}
			log.Warn().Err(err).Int("page", page).Str("code", perr.CodeOf(err).String()).Msg("fetch failed; stopping task")
			_ = guardrails.Sleep(ctx, s.Cfg.Sleep)
			ctrl.Failed()
			sum.Err = err
			break
		}

		ext := s.Extract.Extract(body)
		sum.Seen += len(ext.Records)
		s.archive(ctx, part, ext.Records)

		if !ctrl.Extracted(len(ext.Records)) {
			log.Info().Int("page", page).Str("shape", s.describe(body)).Msg("no more items; stopping")
			break
		}

		fresh := 0
		var fatal error
		for _, rec := range ext.Records {
			l, err := s.Norm.Normalize(rec)
			if err != nil {
				if perr.TaskFatal(err) {
					fatal = err
					break
				}
				sum.Skipped++
				log.Debug().Err(err).Int("page", page).Msg("record skipped")
				continue
			}
			if !led.Mark(l.ItemID) {
				continue
			}
			batch = append(batch, l)
			fresh++
		}
		if fatal != nil {
			log.Error().Err(fatal).Int("page", page).Msg("normalize failed; stopping task")
			ctrl.Failed()
			sum.Err = fatal
			break
		}

		log.Info().
			Int("page", page).
			Str("path", ext.Path).
			Int("items", len(ext.Records)).
			Int("new_rows", fresh).
			Msg("page done")

		more := ctrl.Accepted(len(ext.Records), fresh)
		if err := guardrails.Sleep(ctx, s.Cfg.Sleep); err != nil {
			ctrl.Canceled()
			sum.Err = perr.FromContext(err)
			break
		}
		if !more {
			log.Info().Int("page", page).Msg("page brought no new rows; stopping")
			break
		}
	}
	sum.Stop = ctrl.Stop()

	switch {
	case sum.Stop == domain.StopCanceled:
		log.Warn().Int("pending", len(batch)).Msg("task interrupted; partition left untouched")
	case len(batch) == 0:
		log.Info().Str("stop", string(sum.Stop)).Msg("no new rows to append")
	default:
		actx, cancel := guardrails.ForAppend(ctx, s.Cfg.Timeouts)
		err := s.Store.Append(actx, part, batch)
		cancel()
		if err != nil {
			log.Error().Err(err).Int("rows", len(batch)).Msg("append failed")
			sum.Err = errors.Join(sum.Err, err)
			break
		}
		sum.New = len(batch)
		log.Info().Int("rows", sum.New).Str("stop", string(sum.Stop)).Msg("appended new rows")
	}
	sum.Elapsed = time.Since(start)
	return sum
}

func (s *Service) fetch(ctx context.Context, req domain.PageRequest) (json.RawMessage, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Fetch.Fetch(fctx, req)
}

func (s *Service) request(t domain.Task, page int) domain.PageRequest {
	return domain.PageRequest{Task: t, Filters: s.Cfg.Filters, Page: page}
}

// archive mirrors raw records; a failed archive write never stops the task
func (s *Service) archive(ctx context.Context, part string, recs []json.RawMessage) {
	if s.Archive == nil || len(recs) == 0 {
		return
	}
	if err := s.Archive.Write(ctx, part, recs); err != nil {
		logger.C(ctx).Error().Err(err).Int("records", len(recs)).Msg("raw archive write failed")
	}
}

func (s *Service) describe(body json.RawMessage) string {
	sh := s.Extract.Describe(body)
	b, _ := json.Marshal(sh)
	return string(b)
}
