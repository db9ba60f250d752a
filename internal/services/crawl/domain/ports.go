package domain

import (
	"context"
	"encoding/json"

	"carcrawl/internal/core/listing"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, tasks []Task) (RunSummary, error)
	Probe(ctx context.Context, req PageRequest) (ProbeReport, error)
}

// Fetcher returns one page body as JSON; errors end the task
type Fetcher interface {
	Fetch(ctx context.Context, req PageRequest) (json.RawMessage, error)
}

// Extractor finds the listing array in a page body; unknown shapes are empty, never errors
type Extractor interface {
	Extract(body json.RawMessage) Extracted
	Describe(body json.RawMessage) Shape
}

// Normalizer maps one raw record to the canonical row.
// An error means the record has no usable id and must be skipped
type Normalizer interface {
	Normalize(rec json.RawMessage) (listing.Listing, error)
	CleanText(s string) string
}

// PartitionStore is the durable append-only table per partition
type PartitionStore interface {
	// Known returns every item id already persisted for partition; a missing partition is empty
	Known(ctx context.Context, partition string) ([]int64, error)

	// Append writes rows in one durable step
	Append(ctx context.Context, partition string, rows []listing.Listing) error
}

// ListingRepo is the SQL surface behind the postgres PartitionStore
type ListingRepo interface {
	EnsureSchema(ctx context.Context) error
	KnownIDs(ctx context.Context, partition string) ([]int64, error)
	Insert(ctx context.Context, partition string, rows []listing.Listing) (inserted int64, err error)
}

// Archive mirrors raw records verbatim before dedup
type Archive interface {
	Write(ctx context.Context, partition string, records []json.RawMessage) error
}
