package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
)

// probeFields are the raw text keys shown next to their cleaned form. A key
// ending in Name also matches its bare form (brandName or brand)
var probeFields = []string{"region", "color", "title", "brandName", "kindName"}

// Probe fetches one page and reports how it was understood. Nothing is persisted
func (s *Service) Probe(ctx context.Context, req domain.PageRequest) (domain.ProbeReport, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Filters == (domain.Filters{}) {
		req.Filters = s.Cfg.Filters
	}
	rep := domain.ProbeReport{Request: req}

	body, err := s.fetch(ctx, req)
	if err != nil {
		return rep, err
	}
	rep.Shape = s.Extract.Describe(body)

	ext := s.Extract.Extract(body)
	rep.Path = ext.Path
	rep.Count = len(ext.Records)
	logger.C(ctx).Info().Str("path", ext.Path).Int("items", rep.Count).Msg("probe page")
	if rep.Count == 0 {
		return rep, nil
	}

	first := ext.Records[0]
	var pretty bytes.Buffer
	if json.Indent(&pretty, first, "", "  ") == nil {
		rep.First = pretty.Bytes()
	} else {
		rep.First = first
	}

	if l, err := s.Norm.Normalize(first); err == nil {
		rep.Normalized = &l
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(first))
	dec.UseNumber()
	if dec.Decode(&raw) == nil {
		for _, name := range probeFields {
			k, v, ok := textField(raw, name)
			if !ok {
				continue
			}
			rep.Fields = append(rep.Fields, domain.ProbeField{Key: k, Raw: v, Cleaned: s.Norm.CleanText(v)})
		}
	}
	return rep, nil
}

// textField looks up a non-empty string under name, then under name without its Name suffix
func textField(raw map[string]any, name string) (string, string, bool) {
	keys := []string{name}
	if bare := strings.TrimSuffix(name, "Name"); bare != name && bare != "" {
		keys = append(keys, bare)
	}
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return k, v, true
		}
	}
	return "", "", false
}
