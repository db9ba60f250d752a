package ingest

import (
	"bytes"
	"encoding/json"

	"carcrawl/internal/core/listing"
	"carcrawl/internal/core/normalize"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/services/crawl/domain"
)

type normalizer struct{ c *normalize.Cleaner }

// NewNormalizer wraps listing.Normalize with the given cleaner; nil uses the default repairs
func NewNormalizer(c *normalize.Cleaner) domain.Normalizer {
	if c == nil {
		c = normalize.Default()
	}
	return normalizer{c: c}
}

// Decode parses one record keeping numbers as json.Number so ids never pass through float64
func Decode(rec json.RawMessage) (listing.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(rec))
	dec.UseNumber()
	var raw listing.Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "record is not a json object")
	}
	if raw == nil {
		return nil, perr.InvalidArgf("record is null")
	}
	return raw, nil
}

func (n normalizer) Normalize(rec json.RawMessage) (listing.Listing, error) {
	raw, err := Decode(rec)
	if err != nil {
		return listing.Listing{}, err
	}
	if _, ok := listing.ID(raw); !ok {
		return listing.Listing{}, perr.WithField(perr.InvalidArgf("unusable item id %q", listing.Text(raw[listing.KeyItemID])), listing.KeyItemID)
	}
	return listing.Normalize(n.c, raw), nil
}

func (n normalizer) CleanText(s string) string { return n.c.Clean(s) }
