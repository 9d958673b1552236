// Package interfaces defines service contracts for sipfolio
package interfaces

import (
	"context"

	"github.com/bobmcallan/sipfolio/internal/models"
)

// HistoryService loads transaction history from CSV files.
type HistoryService interface {
	// LoadRecords reads every history file and returns the parsed records
	// sorted by date ascending, along with per-file load diagnostics.
	LoadRecords(ctx context.Context) (*models.HistoryLoad, error)
}

// FundRegistry maps raw fund names to configured fund descriptors.
type FundRegistry interface {
	// Resolve returns the descriptor for a raw fund name and its registry
	// position. Unmatched names get a synthesized descriptor and index -1.
	Resolve(fundName string) (models.FundDescriptor, int)

	// Descriptors returns the configured descriptors in registry order.
	Descriptors() []models.FundDescriptor
}

// PricingService resolves current prices for a set of ISINs.
type PricingService interface {
	// ResolvePrices fetches each distinct ISIN once and builds a price book,
	// falling back to cached NAVs for ISINs the source could not supply.
	ResolvePrices(ctx context.Context, isins []string) (*models.PriceBook, error)

	// PersistCache writes the book's usable prices back to the NAV cache
	// so later runs can fall back to them.
	PersistCache(ctx context.Context, book *models.PriceBook) error
}

// PortfolioService aggregates history into the portfolio snapshot.
type PortfolioService interface {
	// BuildSnapshot folds records into per-fund positions, values them
	// against the price book, and computes portfolio totals.
	BuildSnapshot(ctx context.Context, load *models.HistoryLoad, book *models.PriceBook) (*models.PortfolioSnapshot, error)

	// RenderContributionsChart renders cumulative invested versus recorded
	// value over time as a PNG.
	RenderContributionsChart(records []models.HistoryRecord) ([]byte, error)
}
