package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format used across history files and artifacts.
const DateLayout = "2006-01-02"

// HistoryRecord is one purchase row from a history CSV export.
type HistoryRecord struct {
	Date            time.Time       `json:"date"`            // transaction date
	Folio           string          `json:"folio"`           // folio identifier at the AMC
	FundHouse       string          `json:"fundHouse"`       // AMC name as exported
	FundName        string          `json:"fundName"`        // raw scheme name, matched against the registry
	Invested        decimal.Decimal `json:"invested"`        // amount paid
	Units           decimal.Decimal `json:"units"`           // units allotted
	HistoricalNAV   decimal.Decimal `json:"historicalNAV"`   // NAV at allotment
	HistoricalValue decimal.Decimal `json:"historicalValue"` // value at allotment, terminal pricing fallback

	// Provenance for parse reporting; never serialized.
	SourceFile string `json:"-"`
	SourceLine int    `json:"-"`
}

// HistoryLoad is the result of one pass over the history directory.
type HistoryLoad struct {
	Records      []HistoryRecord // sorted by date, ties in input order
	Files        int             // files read successfully
	SkippedFiles int             // files rejected whole (bad header, unreadable)
	SkippedRows  int             // rows rejected inside otherwise good files
}

// EarliestDate returns the date of the first record, or the zero time when
// the load is empty. Records are already sorted.
func (l *HistoryLoad) EarliestDate() time.Time {
	if len(l.Records) == 0 {
		return time.Time{}
	}
	return l.Records[0].Date
}
