package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/models"
)

// chartKey is the artifact name under the charts/ subdirectory.
const chartKey = "contributions.png"

// Run executes one valuation pass end to end: load history, resolve one
// price per distinct identifier, aggregate, and persist the artifacts.
// Returns an error only when no snapshot could be produced; partial price
// failures degrade to cached or historical values and still succeed.
func (a *App) Run(ctx context.Context) error {
	runStart := time.Now()

	load, err := a.HistoryService.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("history load failed: %w", err)
	}
	if len(load.Records) == 0 {
		return fmt.Errorf("no usable history records under %s", a.Config.History.Path)
	}

	book, err := a.PricingService.ResolvePrices(ctx, a.distinctISINs(load.Records))
	if err != nil {
		return fmt.Errorf("price resolution failed: %w", err)
	}

	snapshot, err := a.PortfolioService.BuildSnapshot(ctx, load, book)
	if err != nil {
		return fmt.Errorf("snapshot build failed: %w", err)
	}

	if err := a.Storage.SnapshotStorage().SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("snapshot write failed: %w", err)
	}

	if err := a.PricingService.PersistCache(ctx, book); err != nil {
		a.Logger.Warn().Err(err).Msg("NAV cache not persisted, next run will refetch")
	}

	if a.Config.Output.Chart {
		a.writeChart(load.Records)
	}

	a.Logger.Info().
		Int("funds", snapshot.Totals.FundCount).
		Int("records", snapshot.Totals.TxnCount).
		Dur("elapsed", time.Since(runStart)).
		Msg("Valuation run complete")

	a.printSummary(load, snapshot)

	return nil
}

// distinctISINs collects the identifiers of registry-matched funds, one
// entry per ISIN. Unmatched names have no identifier and are skipped.
func (a *App) distinctISINs(records []models.HistoryRecord) []string {
	seen := make(map[string]bool)
	var isins []string
	for _, record := range records {
		descriptor, index := a.FundRegistry.Resolve(record.FundName)
		if index < 0 || descriptor.ISIN == "" || seen[descriptor.ISIN] {
			continue
		}
		seen[descriptor.ISIN] = true
		isins = append(isins, descriptor.ISIN)
	}
	sort.Strings(isins)
	return isins
}

// writeChart renders and stores the contributions chart. Chart failures
// never fail the run.
func (a *App) writeChart(records []models.HistoryRecord) {
	png, err := a.PortfolioService.RenderContributionsChart(records)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Contribution chart not rendered")
		return
	}
	if err := a.Storage.WriteRaw("charts", chartKey, png); err != nil {
		a.Logger.Warn().Err(err).Msg("Contribution chart not written")
		return
	}
	a.Logger.Debug().Int("bytes", len(png)).Msg("Contribution chart written")
}

// printSummary prints the end-of-run banner with the headline numbers.
func (a *App) printSummary(load *models.HistoryLoad, snapshot *models.PortfolioSnapshot) {
	currency := a.Config.Goal.Currency
	lines := [][2]string{
		{"As of", snapshot.AsOf.Format(time.RFC3339)},
		{"Since", load.EarliestDate().Format(models.DateLayout)},
		{"Funds", fmt.Sprintf("%d", snapshot.Totals.FundCount)},
		{"Records", fmt.Sprintf("%d", snapshot.Totals.TxnCount)},
		{"Invested", common.FormatMoney(snapshot.Totals.Invested.Decimal, currency)},
		{"Value", common.FormatMoney(snapshot.Totals.CurrentValue.Decimal, currency)},
		{"Gain", common.FormatMoney(snapshot.Totals.Gain.Decimal, currency)},
	}
	if snapshot.Totals.XIRR != nil {
		lines = append(lines, [2]string{"XIRR", snapshot.Totals.XIRR.RoundBank(2).StringFixed(2) + "%"})
	}
	if snapshot.Goal != nil {
		lines = append(lines, [2]string{"Goal", snapshot.Goal.Progress.RoundBank(2).StringFixed(2) + "%"})
	}
	common.PrintSummaryBanner(a.Logger, lines)
}
