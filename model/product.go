package model

import "time"

// Origin identifies which stage of the fallback chain produced a result.
type Origin string

const (
	OriginAPI    Origin = "api"
	OriginScrape Origin = "scrape"
	OriginCache  Origin = "cache"
)

// Money is a price in minor-unit-free form: units of the major currency
// plus a nano remainder in [0, 1e9).
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// Score collapses a Money into a single comparable value for ranking.
func (m Money) Score() int64 {
	return m.Units*1_000_000_000 + int64(m.Nanos)
}

// ProductRecord is the canonical product shape every source normalizes into.
type ProductRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       Money  `json:"price"`
	Picture     string `json:"picture"`
	Description string `json:"description,omitempty"`
}

// SourceResult is one batch of products from a single origin. Stale is only
// set when a cached result is served past its freshness window.
type SourceResult struct {
	Origin    Origin          `json:"origin"`
	Products  []ProductRecord `json:"products"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
}
