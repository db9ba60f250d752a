package module

import (
	"path/filepath"
	"time"

	"carcrawl/internal/adapters/ingest/upstream"
	"carcrawl/internal/platform/config"
	"carcrawl/internal/services/crawl/domain"
)

// Store backends
const (
	StoreCSV = "csv"
	StorePG  = "pg"
)

// Options holds configuration for the crawl module. CLI flags override the env defaults
type Options struct {
	OutDir          string
	Sleep           time.Duration
	MaxPages        int
	Auto            bool
	Pages           int // forces fixed mode with this budget when > 0
	StopOnUnchanged bool
	RawJSONL        bool
	Workers         int

	BaseURL      string
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration // per page, on top of HTTPTimeout; 0 is off
	InsecureTLS  bool

	Store            string
	StatementTimeout time.Duration
	AppendTimeout    time.Duration

	Filters domain.Filters
}

// FromConfig reads the crawl options from config with CRAWL_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CRAWL_")
	return Options{
		OutDir:           c.MayString("OUT_DIR", "./data"),
		Sleep:            c.MayDuration("SLEEP", time.Second),
		MaxPages:         c.MayPositiveInt("MAX_PAGES", 200),
		Auto:             c.MayBool("AUTO", false),
		StopOnUnchanged:  c.MayBool("STOP_ON_UNCHANGED", true),
		RawJSONL:         c.MayBool("RAW_JSONL", false),
		Workers:          c.MayPositiveInt("WORKERS", 1),
		BaseURL:          c.MayURL("BASE_URL", upstream.DefaultBaseURL),
		HTTPTimeout:      c.MayDuration("HTTP_TIMEOUT", 30*time.Second),
		FetchTimeout:     c.MayDuration("FETCH_TIMEOUT", 0),
		InsecureTLS:      c.MayBool("INSECURE_TLS", true),
		Store:            c.MayEnum("STORE", StoreCSV, StoreCSV, StorePG),
		StatementTimeout: c.MayDuration("PGSQL_STATEMENT_TIMEOUT", 30*time.Second),
		AppendTimeout:    c.MayDuration("APPEND_TIMEOUT", 0),
	}
}

// Mode resolves fixed vs open ended; an explicit page count always means fixed
func (o Options) Mode() domain.Mode {
	if o.Pages > 0 || !o.Auto {
		return domain.ModeFixed
	}
	return domain.ModeOpen
}

// RawDir is where the raw archive goes
func (o Options) RawDir() string { return filepath.Join(o.OutDir, "raw") }
