package upstream

import (
	"net/url"
	"strconv"
	"strings"

	pstrings "carcrawl/internal/platform/strings"
)

// DefaultBaseURL is the listing search endpoint
const DefaultBaseURL = "https://www.8891.com.tw/api/v5/items/search"

// fixed query parameters the search endpoint expects from its own web client
const (
	apiVersion = "6.19"
	deviceID   = "77591190-5a8a-8d40-fe2d-47ccd84c5a85-a"
	sortOrder  = "year-desc"
)

// Query is one page request. Brand and Kind are optional and sent lowercased
type Query struct {
	Page       int
	Brand      string
	Kind       string
	YearRange  string
	PriceRange string
}

// Values renders q as url.Values; empty filters are omitted
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	if b := pstrings.LowerTrim(q.Brand); b != "" {
		v.Set("brand", b)
	}
	if k := pstrings.LowerTrim(q.Kind); k != "" {
		v.Set("kind", k)
	}
	v.Set("api", apiVersion)
	v.Set("device_id", deviceID)
	v.Set("sort", sortOrder)
	if q.YearRange != "" {
		v.Set("makeYear[]", q.YearRange)
	}
	if q.PriceRange != "" {
		v.Set("price", q.PriceRange)
	}
	return v
}

// URL joins base and the encoded query; used for logs and the probe report
func (q Query) URL(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Values().Encode()
}
