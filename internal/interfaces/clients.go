// Package interfaces defines service contracts for sipfolio
package interfaces

import (
	"context"

	"github.com/bobmcallan/sipfolio/internal/models"
)

// PriceSource provides latest published NAVs keyed by ISIN.
type PriceSource interface {
	// LookupNAV returns the most recent published NAV for an ISIN.
	// A not-found error means the ISIN is absent from the source's table;
	// other errors indicate the source itself was unreachable.
	LookupNAV(ctx context.Context, isin string) (*models.NAVQuote, error)
}
