package repo

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"carcrawl/internal/core/listing"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	"carcrawl/internal/services/crawl/domain"
)

// bom lets spreadsheet tools pick UTF-8 for the CJK text
const bom = "\ufeff"

// CSV is a PartitionStore keeping one <partition>.csv per partition under Dir
type CSV struct {
	Dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCSV returns a CSV store rooted at dir
func NewCSV(dir string) *CSV { return &CSV{Dir: dir, locks: map[string]*sync.Mutex{}} }

var _ domain.PartitionStore = (*CSV)(nil)

// Path is where partition lives on disk
func (s *CSV) Path(partition string) string {
	return filepath.Join(s.Dir, partition+".csv")
}

func (s *CSV) lock(partition string) func() {
	s.mu.Lock()
	m, ok := s.locks[partition]
	if !ok {
		m = &sync.Mutex{}
		s.locks[partition] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Known reads the item_id column. A missing file, an empty file or a header without item_id is an empty set
func (s *CSV) Known(ctx context.Context, partition string) ([]int64, error) {
	defer s.lock(partition)()
	path := s.Path(partition)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.WithOp(perr.Storagef(err, "open %s", path), "csv.known")
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.WithOp(perr.Storagef(err, "read header %s", path), "csv.known")
	}
	col := -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		if strings.TrimSpace(h) == "item_id" {
			col = i
			break
		}
	}
	if col < 0 {
		logger.C(ctx).Warn().Str("path", path).Strs("header", header).Msg("partition file has no item_id column; treating as empty")
		return nil, nil
	}

	var ids []int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.FromContext(err)
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.WithOp(perr.Storagef(err, "read %s", path), "csv.known")
		}
		if col >= len(rec) {
			continue
		}
		if id, ok := listing.ParseID(rec[col]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// tornTail reports whether a non-empty file does not end in a newline
func tornTail(f *os.File, size int64) (bool, error) {
	if size == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// Append writes rows after the existing ones. A new file gets the BOM and the header first.
// The file is synced before returning
func (s *CSV) Append(ctx context.Context, partition string, rows []listing.Listing) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return perr.FromContext(err)
	}
	defer s.lock(partition)()
	path := s.Path(partition)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return perr.WithOp(perr.Storagef(err, "mkdir %s", s.Dir), "csv.append")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return perr.WithOp(perr.Storagef(err, "open %s", path), "csv.append")
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "stat %s", path), "csv.append")
	}

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	switch torn, err := tornTail(f, st.Size()); {
	case err != nil:
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "read tail %s", path), "csv.append")
	case torn:
		// a crash mid-append left the last row without its newline
		logger.C(ctx).Warn().Str("path", path).Msg("partition file ends mid-row; starting a new line")
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return perr.WithOp(perr.Storagef(err, "write %s", path), "csv.append")
		}
	}
	if st.Size() == 0 {
		if _, err := bw.WriteString(bom); err != nil {
			_ = f.Close()
			return perr.WithOp(perr.Storagef(err, "write %s", path), "csv.append")
		}
		if err := w.Write(listing.Columns); err != nil {
			_ = f.Close()
			return perr.WithOp(perr.Storagef(err, "write header %s", path), "csv.append")
		}
	}
	for _, l := range rows {
		if err := w.Write(l.Row()); err != nil {
			_ = f.Close()
			return perr.WithOp(perr.Storagef(err, "write %s", path), "csv.append")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "flush %s", path), "csv.append")
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "flush %s", path), "csv.append")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return perr.WithOp(perr.Storagef(err, "sync %s", path), "csv.append")
	}
	if err := f.Close(); err != nil {
		return perr.WithOp(perr.Storagef(err, "close %s", path), "csv.append")
	}
	return nil
}
