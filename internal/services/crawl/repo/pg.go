// Package repo provides the partition stores for crawl output
package repo

import (
	"context"

	"carcrawl/internal/core/listing"
	"carcrawl/internal/modkit/repokit"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/store"
	"carcrawl/internal/services/crawl/domain"
)

type (
	// PG is a Postgres binder for domain.ListingRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.ListingRepo
func NewPG() repokit.Binder[domain.ListingRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.ListingRepo { return &queries{q: q} }

// Schema is the listings table; (partition, item_id) is the dedup identity
const Schema = `
	CREATE TABLE IF NOT EXISTS listings (
		partition     text        NOT NULL,
		item_id       bigint      NOT NULL,
		brand         text        NOT NULL DEFAULT '',
		series        text        NOT NULL DEFAULT '',
		model         text        NOT NULL DEFAULT '',
		year          integer,
		mileage_km    bigint,
		price_ntd     bigint,
		region        text        NOT NULL DEFAULT '',
		color         text        NOT NULL DEFAULT '',
		fuel          text        NOT NULL DEFAULT '',
		transmission  text        NOT NULL DEFAULT '',
		post_at       text        NOT NULL DEFAULT '',
		renew_at      text        NOT NULL DEFAULT '',
		views_today   bigint,
		views_total   bigint,
		title         text        NOT NULL DEFAULT '',
		sub_title     text        NOT NULL DEFAULT '',
		image         text        NOT NULL DEFAULT '',
		big_image     text        NOT NULL DEFAULT '',
		inserted_at   timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (partition, item_id)
	)`

// EnsureSchema creates the listings table when missing
func (r *queries) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, Schema)
	return perr.FromPostgres(err, "create listings")
}

// KnownIDs returns every item id stored for partition
func (r *queries) KnownIDs(ctx context.Context, partition string) ([]int64, error) {
	ids, err := store.Many(ctx, r.q, func(row store.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, `SELECT item_id FROM listings WHERE partition = $1`, partition)
	return ids, perr.FromPostgres(err, "select item ids")
}

// Insert writes rows, skipping ids the partition already holds
func (r *queries) Insert(ctx context.Context, partition string, rows []listing.Listing) (int64, error) {
	const insertSQL = `
		INSERT INTO listings (
			partition, item_id, brand, series, model, year, mileage_km, price_ntd,
			region, color, fuel, transmission, post_at, renew_at,
			views_today, views_total, title, sub_title, image, big_image
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20
		)
		ON CONFLICT (partition, item_id) DO NOTHING`

	var inserted int64
	for _, l := range rows {
		tag, err := r.q.Exec(ctx, insertSQL,
			partition, l.ItemID, l.Brand, l.Series, l.Model, l.Year, l.MileageKM, l.PriceNTD,
			l.Region, l.Color, l.Fuel, l.Transmission, l.PostAt, l.RenewAt,
			l.ViewsToday, l.ViewsTotal, l.Title, l.SubTitle, l.Image, l.BigImage,
		)
		if err != nil {
			return inserted, perr.WithField(perr.FromPostgres(err, "insert listing"), "item_id")
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}
