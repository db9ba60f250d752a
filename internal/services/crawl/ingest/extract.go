package ingest

import (
	"encoding/json"

	"carcrawl/internal/adapters/ingest/envelope"
	"carcrawl/internal/services/crawl/domain"
)

type extractor struct{}

// NewExtractor wraps envelope.Extract
func NewExtractor() domain.Extractor { return extractor{} }

func (extractor) Extract(body json.RawMessage) domain.Extracted {
	r := envelope.Extract(body)
	out := domain.Extracted{Records: r.Records}
	if r.Matched {
		out.Path = r.Path.String()
	}
	return out
}

func (extractor) Describe(body json.RawMessage) domain.Shape {
	sh := envelope.Describe(body)
	return domain.Shape{Kind: sh.Kind, TopKeys: sh.TopKeys, DataKeys: sh.DataKeys}
}
