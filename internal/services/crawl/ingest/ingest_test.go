package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"carcrawl/internal/adapters/ingest/upstream"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/services/crawl/domain"

	"github.com/stretchr/testify/require"
)

type stubPages struct {
	got  upstream.Query
	page upstream.Page
	err  error
}

func (s *stubPages) Fetch(_ context.Context, q upstream.Query) (upstream.Page, error) {
	s.got = q
	return s.page, s.err
}

func TestFetcher_MapsRequest(t *testing.T) {
	stub := &stubPages{page: upstream.Page{Body: json.RawMessage(`{"items":[]}`)}}
	f := NewFetcher(stub)

	body, err := f.Fetch(context.Background(), domain.PageRequest{
		Task:    domain.Task{Brand: "Toyota", Kind: "Camry"},
		Filters: domain.Filters{YearRange: "2015_2025", PriceRange: "1_2"},
		Page:    4,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[]}`, string(body))
	require.Equal(t, upstream.Query{Page: 4, Brand: "Toyota", Kind: "Camry", YearRange: "2015_2025", PriceRange: "1_2"}, stub.got)
}

func TestFetcher_PassesErrors(t *testing.T) {
	stub := &stubPages{err: perr.Statusf("http 503")}
	_, err := NewFetcher(stub).Fetch(context.Background(), domain.PageRequest{Page: 1})
	require.True(t, perr.IsCode(err, perr.ErrorCodeStatus))
}

func TestExtractor(t *testing.T) {
	x := NewExtractor()
	got := x.Extract(json.RawMessage(`{"data":{"list":[{"itemId":1}]}}`))
	require.Equal(t, "data.list", got.Path)
	require.Len(t, got.Records, 1)

	none := x.Extract(json.RawMessage(`{"ok":true}`))
	require.Empty(t, none.Path)
	require.Empty(t, none.Records)

	require.Equal(t, domain.Shape{Kind: "object", TopKeys: []string{"data"}, DataKeys: []string{"list"}},
		x.Describe(json.RawMessage(`{"data":{"list":[]}}`)))
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(nil)

	l, err := n.Normalize(json.RawMessage(`{"itemId":9007199254740993,"price":"11.5萬","mileage":"123,456 KM","makeYear":"2019年","region":" 台北市 "}`))
	require.NoError(t, err)
	require.Equal(t, int64(9007199254740993), l.ItemID)
	require.Equal(t, int64(115000), *l.PriceNTD)
	require.Equal(t, int64(123456), *l.MileageKM)
	require.Equal(t, 2019, *l.Year)
	require.Equal(t, "台北市", l.Region)

	_, err = n.Normalize(json.RawMessage(`{"itemId":"abc"}`))
	require.Error(t, err)
	require.False(t, perr.TaskFatal(err))
	e, ok := perr.As(err)
	require.True(t, ok)
	require.Equal(t, "itemId", e.Field())

	_, err = n.Normalize(json.RawMessage(`{"title":"no id"}`))
	require.Error(t, err)

	_, err = n.Normalize(json.RawMessage(`null`))
	require.Error(t, err)

	require.Equal(t, "a b", n.CleanText("  a　 b "))
}
