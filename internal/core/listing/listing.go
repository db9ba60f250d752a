// Package listing maps raw upstream listing objects onto the flat row shape every store persists
package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"carcrawl/internal/core/normalize"
)

// Raw is one upstream listing as decoded with json.Decoder.UseNumber
type Raw = map[string]any

// Listing is the canonical record. Pointer fields are absent when nil
type Listing struct {
	ItemID       int64  `json:"item_id"`
	Brand        string `json:"brand"`
	Series       string `json:"series"`
	Model        string `json:"model"`
	Year         *int   `json:"year"`
	MileageKM    *int64 `json:"mileage_km"`
	PriceNTD     *int64 `json:"price_ntd"`
	Region       string `json:"region"`
	Color        string `json:"color"`
	Fuel         string `json:"fuel"`
	Transmission string `json:"transmission"`
	PostAt       string `json:"post_at"`
	RenewAt      string `json:"renew_at"`
	ViewsToday   *int64 `json:"views_today"`
	ViewsTotal   *int64 `json:"views_total"`
	Title        string `json:"title"`
	SubTitle     string `json:"sub_title"`
	Image        string `json:"image"`
	BigImage     string `json:"big_image"`
}

// Columns is the fixed persisted column order
var Columns = []string{
	"item_id", "brand", "series", "model", "year", "mileage_km", "price_ntd", "region",
	"color", "fuel", "transmission", "post_at", "renew_at", "views_today", "views_total",
	"title", "sub_title", "image", "big_image",
}

// upstream keys
const (
	KeyItemID = "itemId"
)

// ID returns the integral itemId of raw; ok=false means the record cannot be deduplicated
func ID(raw Raw) (int64, bool) {
	return ParseID(raw[KeyItemID])
}

// Normalize maps raw onto a Listing using c for text fields. It never fails:
// unparseable fields are left absent and a missing id leaves ItemID at 0
func Normalize(c *normalize.Cleaner, raw Raw) Listing {
	if c == nil {
		c = normalize.Default()
	}
	text := func(key string) string { return c.Clean(Text(raw[key])) }

	id, _ := ID(raw)
	return Listing{
		ItemID:       id,
		Brand:        text("brandEnName"),
		Series:       text("kindEnName"),
		Model:        text("modelEnName"),
		Year:         ParseYear(raw["makeYear"], raw["yearType"]),
		MileageKM:    ParseMileage(raw["mileage"]),
		PriceNTD:     ParsePrice(raw["price"]),
		Region:       text("region"),
		Color:        text("color"),
		Fuel:         text("gas"),
		Transmission: text("tab"),
		PostAt:       text("itemPostDate"),
		RenewAt:      text("itemRenewDate"),
		ViewsToday:   ParseCount(raw["dayViewNum"]),
		ViewsTotal:   ParseCount(raw["totalViewNum"]),
		Title:        text("title"),
		SubTitle:     text("subTitle"),
		Image:        text("image"),
		BigImage:     text("bigImage"),
	}
}

// Row renders l in Columns order; absent numbers become empty cells
func (l Listing) Row() []string {
	return []string{
		strconv.FormatInt(l.ItemID, 10),
		l.Brand, l.Series, l.Model,
		optInt(l.Year), optInt64(l.MileageKM), optInt64(l.PriceNTD),
		l.Region, l.Color, l.Fuel, l.Transmission, l.PostAt, l.RenewAt,
		optInt64(l.ViewsToday), optInt64(l.ViewsTotal),
		l.Title, l.SubTitle, l.Image, l.BigImage,
	}
}

// Text stringifies a decoded JSON value; nil is ""
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func optInt64(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

// trimmed returns the stringified value with surrounding space removed
func trimmed(v any) string { return strings.TrimSpace(Text(v)) }
