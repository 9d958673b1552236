package models

import "time"

// FundPosition is one aggregated fund in the snapshot. Field names are the
// dashboard contract; absent optional fields mean "undefined", never zero.
type FundPosition struct {
	Name             string      `json:"name"`                       // first-seen raw fund name
	ISIN             string      `json:"identifier"`                 // empty for unknown buckets
	Short            string      `json:"shortCode"`                  // display code
	House            string      `json:"house"`                      // registry house, "Unknown" for buckets
	Color            string      `json:"color"`                      // dashboard series color
	Folio            string      `json:"folio"`                      // first-seen folio
	FundHouse        string      `json:"fundHouse"`                  // first-seen exported AMC name
	TotalInvested    Money       `json:"totalInvested"`              // exact sum of invested amounts
	TotalUnits       Quantity    `json:"totalUnits"`                 // exact sum of units
	AvgNAV           *NAVValue   `json:"avgNav,omitempty"`           // invested/units, absent at zero units
	CurrentPrice     *NAVValue   `json:"currentPrice,omitempty"`     // absent when no live or cached NAV
	PriceDate        string      `json:"priceDate,omitempty"`        // date the price belongs to
	CurrentValue     Money       `json:"currentValue"`               // units x price, or historical fallback
	Gain             Money       `json:"gain"`                       // currentValue - totalInvested
	GainPercent      *Percent    `json:"gainPercent,omitempty"`      // absent at zero invested
	PortfolioPercent *Percent    `json:"portfolioPercent,omitempty"` // invested share, absent when totals are zero
	TxnCount         int         `json:"txnCount"`                   // records aggregated into this position
	PriceStatus      PriceStatus `json:"priceStatus"`
}

// PortfolioTotals summarizes the whole portfolio.
type PortfolioTotals struct {
	Invested     Money    `json:"invested"`
	CurrentValue Money    `json:"currentValue"`
	Gain         Money    `json:"gain"`
	GainPercent  *Percent `json:"gainPercent,omitempty"` // absent at zero invested
	XIRR         *Percent `json:"xirr,omitempty"`        // annualized, absent when not computable
	FundCount    int      `json:"fundCount"`
	TxnCount     int      `json:"txnCount"`
}

// GoalProgress reports progress toward the configured savings goal.
type GoalProgress struct {
	Target        Money   `json:"target"`
	Progress      Percent `json:"progress"`                // currentValue/target share
	ProjectedDate string  `json:"projectedDate,omitempty"` // absent without a contribution rate or once the target is met
}

// PortfolioSnapshot is the engine's primary artifact, consumed by the
// dashboard. Identical inputs produce byte-identical snapshots.
type PortfolioSnapshot struct {
	AsOf   time.Time       `json:"asOf"` // price-fetch completion time, UTC
	Funds  []FundPosition  `json:"funds"`
	Totals PortfolioTotals `json:"totals"`
	Goal   *GoalProgress   `json:"goal,omitempty"` // absent when no goal is configured
}
