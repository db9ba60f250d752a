package repo

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"carcrawl/internal/core/listing"
	perr "carcrawl/internal/platform/errors"
	kit "carcrawl/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func rows(ids ...int64) []listing.Listing {
	out := make([]listing.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, listing.Listing{ItemID: id, Brand: "Toyota", Region: "台北市", Title: "豐田 Camry, 2.0", PriceNTD: ptr(int64(858000))})
	}
	return out
}

func TestCSV_KnownMissingPartition(t *testing.T) {
	s := NewCSV(t.TempDir())
	ids, err := s.Known(context.Background(), "toyota_camry")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestCSV_AppendCreatesWithBOMAndHeader(t *testing.T) {
	ctx := context.Background()
	s := NewCSV(t.TempDir() + "/nested")

	require.NoError(t, s.Append(ctx, "toyota_camry", rows(1, 2)))
	require.NoError(t, s.Append(ctx, "toyota_camry", rows(3)))

	b, err := os.ReadFile(s.Path("toyota_camry"))
	require.NoError(t, err)
	text := string(b)
	require.True(t, strings.HasPrefix(text, "\ufeffitem_id,brand,series"), "bom + header expected")
	require.Equal(t, 1, strings.Count(text, "item_id"), "header written once")
	require.Equal(t, 1, strings.Count(text, "\ufeff"), "bom written once")
	kit.MustContain(t, text, "台北市")
	kit.MustContain(t, text, `"豐田 Camry, 2.0"`)
	require.Equal(t, 4, strings.Count(text, "\n"))

	ids, err := s.Known(ctx, "toyota_camry")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)
}

func TestCSV_AppendEmptyIsNoop(t *testing.T) {
	s := NewCSV(t.TempDir())
	require.NoError(t, s.Append(context.Background(), "general", nil))
	_, err := os.Stat(s.Path("general"))
	require.True(t, os.IsNotExist(err), "no file for an empty batch")
}

func TestCSV_KnownToleratesForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(dir)
	ctx := context.Background()

	kit.WriteFile(t, dir, "empty.csv", "")
	ids, err := s.Known(ctx, "empty")
	require.NoError(t, err)
	require.Empty(t, ids)

	kit.WriteFile(t, dir, "noid.csv", "brand,title\nToyota,x\n")
	ids, err = s.Known(ctx, "noid")
	require.NoError(t, err)
	require.Empty(t, ids)

	kit.WriteFile(t, dir, "plain.csv", "title,item_id\na,10\nb,\nc,11.0\nd,x\ne\n")
	ids, err = s.Known(ctx, "plain")
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11}, ids)
}

func TestCSV_AppendCanceled(t *testing.T) {
	s := NewCSV(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Append(ctx, "general", rows(1))
	require.True(t, perr.IsCode(err, perr.ErrorCodeCanceled))
	_, statErr := os.Stat(s.Path("general"))
	require.True(t, os.IsNotExist(statErr))
}

func TestCSV_AppendUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	kit.WriteFile(t, dir, "blocker", "x")
	s := NewCSV(dir + "/blocker")
	err := s.Append(context.Background(), "general", rows(1))
	require.True(t, perr.IsCode(err, perr.ErrorCodeStorage), "got %v", err)
}

func TestCSV_ConcurrentAppendsSamePartition(t *testing.T) {
	s := NewCSV(t.TempDir())
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := int64(0); i < 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errs <- s.Append(ctx, "general", rows(id))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	ids, err := s.Known(ctx, "general")
	require.NoError(t, err)
	require.Len(t, ids, 8)
}

func TestCSV_AppendAfterTornTail(t *testing.T) {
	ctx := context.Background()
	s := NewCSV(t.TempDir())

	require.NoError(t, s.Append(ctx, "toyota_camry", rows(1)))
	f, err := os.OpenFile(s.Path("toyota_camry"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2,Toy")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Append(ctx, "toyota_camry", rows(3)))

	b, err := os.ReadFile(s.Path("toyota_camry"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "2,Toy", lines[2])
	require.True(t, strings.HasPrefix(lines[3], "3,Toyota,"), "new row starts its own line: %q", lines[3])

	ids, err := s.Known(ctx, "toyota_camry")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)
}
