// Package common provides shared utilities for sipfolio
package common

import "time"

// Freshness TTLs for cached data.
const (
	// FreshnessNAV covers the publish gap over weekends and exchange
	// holidays; cached NAVs older than this are flagged stale.
	FreshnessNAV = 4 * 24 * time.Hour
)

// IsFresh reports whether updated is within ttl of now. A zero updated
// time is never fresh.
func IsFresh(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
