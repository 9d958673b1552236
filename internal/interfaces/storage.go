// Package interfaces defines service contracts for sipfolio
package interfaces

import (
	"context"

	"github.com/bobmcallan/sipfolio/internal/models"
)

// StorageManager coordinates the file-backed stores under the data directory.
type StorageManager interface {
	// Storage accessors
	SnapshotStorage() SnapshotStorage
	NAVCacheStorage() NAVCacheStorage

	// DataPath returns the base data directory path (e.g. ./data).
	DataPath() string

	// WriteRaw writes arbitrary binary data to a subdirectory atomically.
	// Key is sanitized for safe filenames (e.g. "contributions.png").
	WriteRaw(subdir, key string, data []byte) error

	// Lifecycle
	Close() error
}

// SnapshotStorage persists the portfolio snapshot artifact.
type SnapshotStorage interface {
	// GetSnapshot returns the last written snapshot, or an error when none exists.
	GetSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error)

	// SaveSnapshot writes the snapshot atomically, replacing any previous one.
	SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error
}

// NAVCacheStorage persists NAVs from prior runs for price fallback.
type NAVCacheStorage interface {
	// GetNAVCache returns the cached NAVs, or an error when none exist.
	GetNAVCache(ctx context.Context) (*models.NAVCache, error)

	// SaveNAVCache writes the cache atomically, replacing any previous one.
	SaveNAVCache(ctx context.Context, cache *models.NAVCache) error
}
