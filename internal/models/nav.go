package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NAVQuote is one scheme's NAV as published by the price source.
type NAVQuote struct {
	ISIN       string
	SchemeName string
	NAV        decimal.Decimal
	Date       time.Time // publication date of the NAV
}

// CachedNAV is one persisted cache entry.
type CachedNAV struct {
	Price    NAVValue `json:"price"`
	AsOfDate string   `json:"asOfDate"` // YYYY-MM-DD
}

// NAVCache is the persisted price cache, keyed by ISIN. It is read at the
// start of a run as the fallback price source and rewritten at the end with
// fresh quotes merged over retained entries.
type NAVCache struct {
	FetchedAt time.Time            `json:"fetchedAt"`
	NAVs      map[string]CachedNAV `json:"navs"`
}

// NewNAVCache returns an empty cache.
func NewNAVCache() *NAVCache {
	return &NAVCache{NAVs: make(map[string]CachedNAV)}
}

// ResolvedPrice is the outcome of one identifier's price resolution.
type ResolvedPrice struct {
	ISIN   string
	Price  decimal.Decimal
	Date   string // YYYY-MM-DD the price belongs to
	Status PriceStatus
	Reason string // failure detail when Status is not live
}

// PriceBook holds the run's resolved prices, one entry per distinct ISIN
// attempted. Positions without an entry fall back to historical value.
type PriceBook struct {
	AsOf   time.Time
	Prices map[string]ResolvedPrice
}

// NewPriceBook returns an empty book stamped with the resolution time.
func NewPriceBook(asOf time.Time) *PriceBook {
	return &PriceBook{AsOf: asOf, Prices: make(map[string]ResolvedPrice)}
}

// Lookup returns the resolved price for an ISIN.
func (b *PriceBook) Lookup(isin string) (ResolvedPrice, bool) {
	rp, ok := b.Prices[isin]
	return rp, ok
}

// CountByStatus tallies resolution outcomes for logging.
func (b *PriceBook) CountByStatus() map[PriceStatus]int {
	counts := make(map[PriceStatus]int)
	for _, rp := range b.Prices {
		counts[rp.Status]++
	}
	return counts
}
