// Package archive mirrors raw upstream records to JSONL files, one line per record
package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	perr "carcrawl/internal/platform/errors"
	ptime "carcrawl/internal/platform/time"
	"carcrawl/internal/services/crawl/domain"
)

// JSONL writes <Dir>/dt=YYYY-MM-DD/<partition>.jsonl, appending across runs on the same day
type JSONL struct {
	Dir string
	mu  sync.Mutex
}

// NewJSONL returns an archive rooted at dir
func NewJSONL(dir string) *JSONL { return &JSONL{Dir: dir} }

var _ domain.Archive = (*JSONL)(nil)

// Path is the file records for partition go to today
func (a *JSONL) Path(partition string) string {
	return filepath.Join(a.Dir, "dt="+ptime.Today(), partition+".jsonl")
}

// Write appends records verbatim, each compacted onto one line
func (a *JSONL) Write(ctx context.Context, partition string, records []json.RawMessage) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return perr.FromContext(err)
	}

	var buf bytes.Buffer
	for _, rec := range records {
		if err := json.Compact(&buf, rec); err != nil {
			return perr.WithOp(perr.Malformedf(err, "compact raw record"), "archive.write")
		}
		buf.WriteByte('\n')
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.Path(partition)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.WithOp(perr.Storagef(err, "mkdir %s", filepath.Dir(path)), "archive.write")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.WithOp(perr.Storagef(err, "open %s", path), "archive.write")
	}
	w := bufio.NewWriter(f)
	if _, err := buf.WriteTo(w); err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "write %s", path), "archive.write")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "flush %s", path), "archive.write")
	}
	if err := f.Close(); err != nil {
		return perr.WithOp(perr.Storagef(err, "close %s", path), "archive.write")
	}
	return nil
}
