// Package storage implements file-based JSON storage for the engine's
// output artifacts. Every write goes through a temp file and rename so a
// crash mid-write never leaves a torn artifact behind.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

const (
	snapshotKey = "portfolio"
	navCacheKey = "nav"
)

// Store provides file-based JSON storage under a single data directory.
type Store struct {
	basePath string
	logger   *common.Logger
}

// NewStore creates a file store rooted at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store path %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Portfolio store opened")
	return &Store{
		basePath: path,
		logger:   logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// SnapshotStorage returns the snapshot storage interface.
func (s *Store) SnapshotStorage() interfaces.SnapshotStorage {
	return &snapshotStorage{store: s}
}

// NAVCacheStorage returns the NAV cache storage interface.
func (s *Store) NAVCacheStorage() interfaces.NAVCacheStorage {
	return &navCacheStorage{store: s}
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(key))
	return writeAtomic(dir, target, data)
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')
	return writeAtomic(dir, filePath(dir, key), jsonData)
}

func writeAtomic(dir, target string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// --- SnapshotStorage ---

type snapshotStorage struct {
	store *Store
}

func (ss *snapshotStorage) GetSnapshot(_ context.Context) (*models.PortfolioSnapshot, error) {
	var snapshot models.PortfolioSnapshot
	if err := readJSON(ss.store.basePath, snapshotKey, &snapshot); err != nil {
		return nil, fmt.Errorf("portfolio snapshot not found: %w", err)
	}
	return &snapshot, nil
}

func (ss *snapshotStorage) SaveSnapshot(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	if err := writeJSON(ss.store.basePath, snapshotKey, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	ss.store.logger.Debug().Int("funds", len(snapshot.Funds)).Msg("Portfolio snapshot saved")
	return nil
}

// --- NAVCacheStorage ---

type navCacheStorage struct {
	store *Store
}

func (ns *navCacheStorage) GetNAVCache(_ context.Context) (*models.NAVCache, error) {
	var cache models.NAVCache
	if err := readJSON(ns.store.basePath, navCacheKey, &cache); err != nil {
		return nil, fmt.Errorf("NAV cache not found: %w", err)
	}
	return &cache, nil
}

func (ns *navCacheStorage) SaveNAVCache(_ context.Context, cache *models.NAVCache) error {
	if err := writeJSON(ns.store.basePath, navCacheKey, cache); err != nil {
		return fmt.Errorf("failed to save NAV cache: %w", err)
	}
	ns.store.logger.Debug().Int("navs", len(cache.NAVs)).Msg("NAV cache saved")
	return nil
}

// Ensure Store implements StorageManager
var _ interfaces.StorageManager = (*Store)(nil)
