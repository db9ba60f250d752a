// Package domain holds the crawl task model and the ports the service drives
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"carcrawl/internal/core/listing"
	pstrings "carcrawl/internal/platform/strings"
)

// GeneralPartition holds listings from tasks with neither brand nor kind
const GeneralPartition = "general"

// PartitionKey is the storage identity of a (brand, kind) pair. Lookup and creation both go through it.
// The key names a file, so it never holds a path separator and never starts or ends with a dot
func PartitionKey(brand, kind string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{brand, kind} {
		if p = fileSafe(pstrings.LowerTrim(p)); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return GeneralPartition
	}
	return strings.Join(parts, "_")
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

func fileSafe(s string) string {
	return strings.Trim(unsafeName.Replace(s), "._ ")
}

// Filters are the opaque upstream range tokens shared by every task of a run
type Filters struct {
	YearRange  string // e.g. 2015_2025
	PriceRange string // e.g. 500000_2000000
}

// Task is one (brand, kind) crawl. Pages is the fixed mode budget
type Task struct {
	Brand   string
	Kind    string
	Enabled bool
	Pages   int
}

// Partition returns the task's partition key
func (t Task) Partition() string { return PartitionKey(t.Brand, t.Kind) }

// Label is a human form for logs and tables, e.g. toyota/camry
func (t Task) Label() string {
	b, k := strings.TrimSpace(t.Brand), strings.TrimSpace(t.Kind)
	switch {
	case b == "" && k == "":
		return "(all)"
	case k == "":
		return b
	case b == "":
		return "*/" + k
	}
	return b + "/" + k
}

// Mode selects how the page loop ends
type Mode string

const (
	// ModeFixed fetches exactly Task.Pages pages
	ModeFixed Mode = "fixed"

	// ModeOpen keeps going until the data runs out, nothing new shows up, or the cap is hit
	ModeOpen Mode = "auto"
)

// StopReason records why a task's page loop ended
type StopReason string

const (
	StopPagesDone StopReason = "pages_done"
	StopEmpty     StopReason = "empty"
	StopError     StopReason = "error"
	StopCap       StopReason = "cap"
	StopUnchanged StopReason = "unchanged"
	StopCanceled  StopReason = "canceled"
)

// PageRequest addresses one upstream page for a task
type PageRequest struct {
	Task    Task
	Filters Filters
	Page    int
}

// Extracted is the listing array pulled out of one page envelope
type Extracted struct {
	Records []json.RawMessage
	Path    string // where the array was found, "" when the shape was not recognized
}

// TaskSummary is the per task report
type TaskSummary struct {
	Task      Task
	Partition string
	Mode      Mode
	Existing  int // ids known at task start
	Pages     int // fetch attempts, failed ones included
	Seen      int // records extracted across pages
	New       int // rows appended
	Skipped   int // records dropped for an unusable id
	Stop      StopReason
	Err       error
	Elapsed   time.Duration
}

// Failed reports whether the task ended on an error
func (s TaskSummary) Failed() bool { return s.Err != nil }

// RunSummary is the tally of one run
type RunSummary struct {
	RunID string
	Tasks []TaskSummary
}

// NewRows sums appended rows over all tasks
func (r RunSummary) NewRows() int {
	n := 0
	for _, t := range r.Tasks {
		n += t.New
	}
	return n
}

// Failures counts tasks that ended on an error
func (r RunSummary) Failures() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Failed() {
			n++
		}
	}
	return n
}

// Shape is the outer layout of a page body: object, array or other, plus its keys
type Shape struct {
	Kind     string
	TopKeys  []string
	DataKeys []string
}

// ProbeReport describes one fetched page for the probe command
type ProbeReport struct {
	Request    PageRequest
	Shape      Shape
	Path       string
	Count      int
	First      json.RawMessage
	Normalized *listing.Listing
	Fields     []ProbeField
}

// ProbeField compares a raw text value with its cleaned form
type ProbeField struct {
	Key     string
	Raw     string
	Cleaned string
}
