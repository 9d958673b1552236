package models

import "strings"

// FundDescriptor maps a scheme-name pattern to the fund's identity and
// display metadata. The registry is an ordered list; the first descriptor
// whose Match is a case-folded substring of a record's fund name wins.
type FundDescriptor struct {
	Match string `toml:"match" json:"match"` // lowercase substring pattern
	ISIN  string `toml:"isin" json:"isin"`   // identifier used for NAV lookups
	Short string `toml:"short" json:"short"` // two-letter display code
	Color string `toml:"color" json:"color"` // dashboard series color
	House string `toml:"house" json:"house"` // fund house display name
}

// Metadata for records no registry entry matches.
const (
	UnknownHouse = "Unknown"
	UnknownColor = "#6b7385"
)

// UnknownDescriptor synthesizes a descriptor for an unmatched fund name.
// The short code is the first two characters of the name, uppercased.
func UnknownDescriptor(fundName string) FundDescriptor {
	runes := []rune(strings.TrimSpace(fundName))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return FundDescriptor{
		Short: strings.ToUpper(string(runes)),
		Color: UnknownColor,
		House: UnknownHouse,
	}
}

// PriceStatus reports how a position's current value was priced.
type PriceStatus string

const (
	PriceStatusLive        PriceStatus = "live"        // NAV fetched this run
	PriceStatusCached      PriceStatus = "cached"      // lookup failed, cached NAV used
	PriceStatusUnavailable PriceStatus = "unavailable" // no NAV at all, historical value used
)
