// Package plan loads the crawl task document: filters, tasks and page defaults
package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/platform/validate"
	"carcrawl/internal/services/crawl/domain"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// fallback values when the document leaves them out
const (
	DefaultYearRange  = "2015_2025"
	DefaultPriceRange = "500000_2000000"
	DefaultPages      = 3
)

// Document is the on disk shape. JSON5 is accepted, so comments and trailing commas are fine
type Document struct {
	Filters  FiltersDoc  `json:"filters"`
	Defaults DefaultsDoc `json:"defaults"`
	Tasks    []TaskDoc   `json:"tasks" validate:"dive"`
}

// FiltersDoc holds the upstream range tokens. A missing key takes the default;
// "" or null turns that filter off
type FiltersDoc struct {
	MakeYearRange *string `json:"make_year_range" validate:"omitempty,range_token"`
	PriceRange    *string `json:"price_range" validate:"omitempty,range_token"`
}

// DefaultsDoc holds per task fallbacks
type DefaultsDoc struct {
	Pages int `json:"pages" validate:"omitempty,min=1"`
}

// TaskDoc is one task entry; Enabled defaults to true
type TaskDoc struct {
	Brand   string `json:"brand"`
	Kind    string `json:"kind"`
	Enabled *bool  `json:"enabled"`
	Pages   int    `json:"pages" validate:"omitempty,min=1"`
}

// Plan is the resolved, validated document
type Plan struct {
	Source  string
	Filters domain.Filters
	Tasks   []domain.Task
}

// Enabled returns the tasks that should run, in document order
func (p Plan) Enabled() []domain.Task {
	out := make([]domain.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// WithPages returns a copy of p with every task's page budget forced to n
func (p Plan) WithPages(n int) Plan {
	if n < 1 {
		return p
	}
	tasks := make([]domain.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.Pages = n
		tasks[i] = t
	}
	p.Tasks = tasks
	return p
}

// LocalPath returns the override file next to name, e.g. tasks.json -> tasks.local.json
func LocalPath(name string) string {
	dir, base := filepath.Dir(name), filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		return filepath.Join(dir, stem+".local")
	}
	return filepath.Join(dir, fmt.Sprintf("%s.local%s", stem, ext))
}

// Read parses name and merges <name>.local.<ext> over it. Either file alone is enough
func Read(name string) (Document, error) {
	var doc Document
	found := false

	b, err := os.ReadFile(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return doc, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeConfig, "read %s", name), "plan.read")
	}
	if len(b) > 0 {
		if doc, err = parse(b); err != nil {
			return doc, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeConfig, "parse %s", name), "plan.read")
		}
		found = true
	}

	local := LocalPath(name)
	lb, err := os.ReadFile(local)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return doc, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeConfig, "read %s", local), "plan.read")
	}
	if len(lb) > 0 {
		override, err := parse(lb)
		if err != nil {
			return doc, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeConfig, "parse %s", local), "plan.read")
		}
		// mergo skips empty sources and writes through pointers, so filters are merged by hand
		filters := overrideFilters(doc.Filters, override.Filters)
		doc.Filters, override.Filters = FiltersDoc{}, FiltersDoc{}
		if err := mergo.Merge(&doc, override, mergo.WithOverride); err != nil {
			return doc, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeConfig, "merge %s", local), "plan.read")
		}
		doc.Filters = filters
		logger.Named("plan").Info().Str("local", local).Msg("merging task plan with local overrides")
		found = true
	}

	if !found {
		return doc, perr.WithOp(perr.NotFoundf("task plan %s not found", name), "plan.read")
	}
	return doc, nil
}

// parse decodes one JSON5 document. A filter key set to null is kept as "" so it disables
// the filter instead of falling back to the default
func parse(b []byte) (Document, error) {
	var doc Document
	if err := json5.Unmarshal(b, &doc); err != nil {
		return doc, err
	}
	var raw struct {
		Filters map[string]any `json:"filters"`
	}
	if err := json5.Unmarshal(b, &raw); err != nil {
		return doc, err
	}
	for key, v := range raw.Filters {
		if v != nil {
			continue
		}
		switch key {
		case "make_year_range":
			doc.Filters.MakeYearRange = new(string)
		case "price_range":
			doc.Filters.PriceRange = new(string)
		}
	}
	return doc, nil
}

func overrideFilters(base, local FiltersDoc) FiltersDoc {
	if local.MakeYearRange != nil {
		base.MakeYearRange = local.MakeYearRange
	}
	if local.PriceRange != nil {
		base.PriceRange = local.PriceRange
	}
	return base
}

// filterOr returns the trimmed token, or def when the document left the key out
func filterOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return strings.TrimSpace(*v)
}

// Load reads, defaults and validates the plan at name
func Load(name string) (Plan, error) {
	doc, err := Read(name)
	if err != nil {
		return Plan{}, err
	}
	return Resolve(name, doc)
}

// Resolve fills defaults into doc, validates it and builds the Plan
func Resolve(source string, doc Document) (Plan, error) {
	if err := validate.Struct(doc); err != nil {
		return Plan{}, perr.WithOp(err, "plan.validate")
	}

	pages := doc.Defaults.Pages
	if pages < 1 {
		pages = DefaultPages
	}

	p := Plan{
		Source: source,
		Filters: domain.Filters{
			YearRange:  filterOr(doc.Filters.MakeYearRange, DefaultYearRange),
			PriceRange: filterOr(doc.Filters.PriceRange, DefaultPriceRange),
		},
		Tasks: make([]domain.Task, 0, len(doc.Tasks)),
	}
	for _, td := range doc.Tasks {
		t := domain.Task{
			Brand:   strings.TrimSpace(td.Brand),
			Kind:    strings.TrimSpace(td.Kind),
			Enabled: td.Enabled == nil || *td.Enabled,
			Pages:   td.Pages,
		}
		if t.Pages < 1 {
			t.Pages = pages
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, nil
}
