// Package ingest holds adapter shims for the crawl ports
package ingest

import (
	"context"
	"encoding/json"

	"carcrawl/internal/adapters/ingest/upstream"
	"carcrawl/internal/services/crawl/domain"
)

// pageFetcher is the subset of upstream.Client the shim needs
type pageFetcher interface {
	Fetch(ctx context.Context, q upstream.Query) (upstream.Page, error)
}

type fetcher struct{ c pageFetcher }

// NewFetcher adapts an upstream client to domain.Fetcher
func NewFetcher(c pageFetcher) domain.Fetcher { return &fetcher{c: c} }

// Fetch translates the page request into an upstream query and returns the JSON body
func (f *fetcher) Fetch(ctx context.Context, req domain.PageRequest) (json.RawMessage, error) {
	p, err := f.c.Fetch(ctx, Query(req))
	if err != nil {
		return nil, err
	}
	return p.Body, nil
}

// Query maps a page request onto the upstream query shape
func Query(req domain.PageRequest) upstream.Query {
	return upstream.Query{
		Page:       req.Page,
		Brand:      req.Task.Brand,
		Kind:       req.Task.Kind,
		YearRange:  req.Filters.YearRange,
		PriceRange: req.Filters.PriceRange,
	}
}
