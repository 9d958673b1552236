// Package pricing resolves current NAVs for the portfolio's identifiers.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

// Service resolves prices through the price source, falling back to the
// persisted NAV cache when a lookup fails.
type Service struct {
	source        interfaces.PriceSource
	storage       interfaces.StorageManager
	logger        *common.Logger
	maxConcurrent int
	lookupTimeout time.Duration
	now           func() time.Time // injectable clock for testing
}

// NewService creates a new pricing service.
func NewService(source interfaces.PriceSource, storage interfaces.StorageManager, logger *common.Logger, maxConcurrent int, lookupTimeout time.Duration) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		source:        source,
		storage:       storage,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		lookupTimeout: lookupTimeout,
		now:           time.Now,
	}
}

// SetClock overrides the time source, pinning AsOf stamps and staleness
// checks to a fixed instant.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ResolvePrices attempts each distinct ISIN exactly once, at most
// maxConcurrent lookups in flight, and returns a book with one entry per
// attempt. Failed lookups fall back to the cache; ISINs absent from both
// get an unavailable entry so the caller can value them from history.
func (s *Service) ResolvePrices(ctx context.Context, isins []string) (*models.PriceBook, error) {
	cache := s.loadCache(ctx)
	targets := dedupe(isins)

	book := models.NewPriceBook(time.Time{})
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, isin := range targets {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(isin string) {
			defer wg.Done()
			defer func() { <-sem }()

			resolved := s.resolveOne(ctx, isin, cache)
			mu.Lock()
			book.Prices[isin] = resolved
			mu.Unlock()
		}(isin)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book.AsOf = s.now().UTC().Truncate(time.Second)

	counts := book.CountByStatus()
	s.logger.Info().
		Int("live", counts[models.PriceStatusLive]).
		Int("cached", counts[models.PriceStatusCached]).
		Int("unavailable", counts[models.PriceStatusUnavailable]).
		Msg("Price resolution complete")

	return book, nil
}

// resolveOne runs a single lookup under its own timeout so one hung request
// cannot stall the whole run.
func (s *Service) resolveOne(ctx context.Context, isin string, cache *models.NAVCache) models.ResolvedPrice {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	quote, err := s.source.LookupNAV(lookupCtx, isin)
	if err == nil {
		date := ""
		if !quote.Date.IsZero() {
			date = quote.Date.Format(models.DateLayout)
		}
		return models.ResolvedPrice{
			ISIN:   isin,
			Price:  quote.NAV,
			Date:   date,
			Status: models.PriceStatusLive,
		}
	}

	if entry, ok := cache.NAVs[isin]; ok {
		s.logger.Warn().Err(err).Str("isin", isin).Msg("NAV lookup failed, using cached price")
		if !common.IsFresh(cache.FetchedAt, common.FreshnessNAV, s.now()) {
			s.logger.Warn().Str("isin", isin).Time("fetched_at", cache.FetchedAt).Msg("Cached NAV is stale")
		}
		return models.ResolvedPrice{
			ISIN:   isin,
			Price:  entry.Price.Decimal,
			Date:   entry.AsOfDate,
			Status: models.PriceStatusCached,
			Reason: err.Error(),
		}
	}

	s.logger.Warn().Err(err).Str("isin", isin).Msg("NAV lookup failed, no cached price")
	return models.ResolvedPrice{
		ISIN:   isin,
		Status: models.PriceStatusUnavailable,
		Reason: err.Error(),
	}
}

// PersistCache rewrites the NAV cache from the book's usable prices. Cached
// entries carried through the book survive the rewrite; identifiers that
// left the portfolio fall out.
func (s *Service) PersistCache(ctx context.Context, book *models.PriceBook) error {
	cache := models.NewNAVCache()
	cache.FetchedAt = book.AsOf
	for isin, rp := range book.Prices {
		if rp.Status == models.PriceStatusUnavailable {
			continue
		}
		cache.NAVs[isin] = models.CachedNAV{
			Price:    models.NewNAVValue(rp.Price),
			AsOfDate: rp.Date,
		}
	}

	if err := s.storage.NAVCacheStorage().SaveNAVCache(ctx, cache); err != nil {
		return fmt.Errorf("failed to persist NAV cache: %w", err)
	}

	s.logger.Debug().Int("navs", len(cache.NAVs)).Msg("NAV cache persisted")
	return nil
}

func (s *Service) loadCache(ctx context.Context) *models.NAVCache {
	cache, err := s.storage.NAVCacheStorage().GetNAVCache(ctx)
	if err != nil {
		// Normal on a first run; every lookup failure then falls through
		// to historical values.
		s.logger.Debug().Err(err).Msg("No NAV cache available")
		return models.NewNAVCache()
	}
	if cache.NAVs == nil {
		cache.NAVs = make(map[string]models.CachedNAV)
	}
	return cache
}

func dedupe(isins []string) []string {
	seen := make(map[string]struct{}, len(isins))
	var out []string
	for _, isin := range isins {
		isin = strings.TrimSpace(isin)
		if isin == "" {
			continue
		}
		if _, ok := seen[isin]; ok {
			continue
		}
		seen[isin] = struct{}{}
		out = append(out, isin)
	}
	sort.Strings(out)
	return out
}

// Ensure Service implements PricingService
var _ interfaces.PricingService = (*Service)(nil)
