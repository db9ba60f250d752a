package pg

import (
	"context"
	"strings"

	"carcrawl/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at info, or warn when slow. It ignores the global level
// so CRAWL_PGSQL_LOG_SQL alone decides whether SQL is logged
func Tracer(root logger.Logger) QueryTracer {
	return sqlLog{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type sqlLog struct{ log logger.Logger }

func (l sqlLog) OnQuery(ctx context.Context, ev QueryEvent) {
	e := l.log.Info()
	if ev.Slow {
		e = l.log.Warn()
	}
	if id := logger.RunID(ctx); id != "" {
		e = e.Str("run_id", id)
	}
	if part := logger.Partition(ctx); part != "" {
		e = e.Str("partition", part)
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine folds every whitespace run into a single space so multi-line DDL logs as one line
func oneLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}), " ")
}
