// Package portfolio folds history records into the valuation snapshot.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Service implements PortfolioService
type Service struct {
	registry interfaces.FundRegistry
	goal     common.GoalConfig
	logger   *common.Logger
}

// NewService creates a new portfolio service
func NewService(registry interfaces.FundRegistry, goal common.GoalConfig, logger *common.Logger) *Service {
	return &Service{
		registry: registry,
		goal:     goal,
		logger:   logger,
	}
}

// position accumulates one fund's records before valuation. Sums stay exact;
// rounding happens when the snapshot is serialized.
type position struct {
	descriptor models.FundDescriptor
	index      int    // registry position, -1 for unknown buckets
	sortKey    string // folded name, orders unknown buckets
	name       string // first-seen raw fund name
	folio      string
	fundHouse  string
	invested   decimal.Decimal
	units      decimal.Decimal
	historical decimal.Decimal // sum of recorded values, the last-resort price
	txns       int
}

// BuildSnapshot groups records by fund, values each group against the price
// book, and computes portfolio totals. Every record lands in exactly one
// position; names no registry entry matches get their own bucket instead of
// being dropped.
func (s *Service) BuildSnapshot(ctx context.Context, load *models.HistoryLoad, book *models.PriceBook) (*models.PortfolioSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if load == nil || len(load.Records) == 0 {
		return nil, fmt.Errorf("no history records to aggregate")
	}
	if book == nil {
		return nil, fmt.Errorf("price book is required")
	}

	positions := s.aggregate(load.Records)

	snapshot := &models.PortfolioSnapshot{AsOf: book.AsOf}
	totalInvested := decimal.Zero
	totalValue := decimal.Zero
	totalTxns := 0

	values := make([]decimal.Decimal, len(positions))
	for i, pos := range positions {
		fund, value := s.value(pos, book)
		snapshot.Funds = append(snapshot.Funds, fund)
		values[i] = value
		totalInvested = totalInvested.Add(pos.invested)
		totalValue = totalValue.Add(value)
		totalTxns += pos.txns
	}

	// Weights need the full total, so they are filled in after the loop.
	if totalInvested.IsPositive() {
		for i := range snapshot.Funds {
			weight := models.NewPercent(positions[i].invested.Div(totalInvested).Mul(hundred))
			snapshot.Funds[i].PortfolioPercent = &weight
		}
	}

	totalGain := totalValue.Sub(totalInvested)
	snapshot.Totals = models.PortfolioTotals{
		Invested:     models.NewMoney(totalInvested),
		CurrentValue: models.NewMoney(totalValue),
		Gain:         models.NewMoney(totalGain),
		FundCount:    len(snapshot.Funds),
		TxnCount:     totalTxns,
	}
	if totalInvested.IsPositive() {
		pct := models.NewPercent(totalGain.Div(totalInvested).Mul(hundred))
		snapshot.Totals.GainPercent = &pct
	}

	if rate, err := CalculateXIRR(load.Records, totalValue, book.AsOf); err != nil {
		s.logger.Debug().Err(err).Msg("XIRR not computable")
	} else {
		xirr := models.NewPercent(decimal.NewFromFloat(rate))
		snapshot.Totals.XIRR = &xirr
	}

	snapshot.Goal = s.goalProgress(totalValue, snapshot)

	s.logger.Info().
		Int("funds", len(snapshot.Funds)).
		Int("records", totalTxns).
		Str("invested", totalInvested.StringFixed(2)).
		Str("current_value", totalValue.StringFixed(2)).
		Msg("Snapshot built")

	return snapshot, nil
}

// aggregate groups records into positions and orders them: registry funds in
// registry order, then unknown buckets by folded name.
func (s *Service) aggregate(records []models.HistoryRecord) []*position {
	grouped := make(map[string]*position)
	for _, record := range records {
		descriptor, index := s.registry.Resolve(record.FundName)

		var key string
		if index >= 0 {
			key = "f:" + strconv.Itoa(index)
		} else {
			key = "u:" + strings.ToLower(record.FundName)
		}

		pos, ok := grouped[key]
		if !ok {
			pos = &position{
				descriptor: descriptor,
				index:      index,
				sortKey:    strings.ToLower(record.FundName),
				name:       record.FundName,
				folio:      record.Folio,
				fundHouse:  record.FundHouse,
			}
			grouped[key] = pos
			if index < 0 {
				s.logger.Warn().Str("fund", record.FundName).Msg("No registry match for fund, keeping as unknown")
			}
		}

		pos.invested = pos.invested.Add(record.Invested)
		pos.units = pos.units.Add(record.Units)
		pos.historical = pos.historical.Add(record.HistoricalValue)
		pos.txns++
	}

	positions := make([]*position, 0, len(grouped))
	for _, pos := range grouped {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		switch {
		case a.index >= 0 && b.index >= 0:
			return a.index < b.index
		case a.index >= 0:
			return true
		case b.index >= 0:
			return false
		default:
			return a.sortKey < b.sortKey
		}
	})
	return positions
}

// value prices one position. Preference order: this run's NAV, then the
// cache entry carried through the book, then the recorded historical value.
func (s *Service) value(pos *position, book *models.PriceBook) (models.FundPosition, decimal.Decimal) {
	fund := models.FundPosition{
		Name:          pos.name,
		ISIN:          pos.descriptor.ISIN,
		Short:         pos.descriptor.Short,
		House:         pos.descriptor.House,
		Color:         pos.descriptor.Color,
		Folio:         pos.folio,
		FundHouse:     pos.fundHouse,
		TotalInvested: models.NewMoney(pos.invested),
		TotalUnits:    models.NewQuantity(pos.units),
		TxnCount:      pos.txns,
	}

	if pos.units.IsPositive() {
		avg := models.NewNAVValue(pos.invested.Div(pos.units))
		fund.AvgNAV = &avg
	}

	value := pos.historical
	fund.PriceStatus = models.PriceStatusUnavailable
	if pos.descriptor.ISIN != "" {
		if rp, ok := book.Lookup(pos.descriptor.ISIN); ok && rp.Status != models.PriceStatusUnavailable {
			value = pos.units.Mul(rp.Price)
			price := models.NewNAVValue(rp.Price)
			fund.CurrentPrice = &price
			fund.PriceDate = rp.Date
			fund.PriceStatus = rp.Status
		}
	}

	fund.CurrentValue = models.NewMoney(value)
	fund.Gain = models.NewMoney(value.Sub(pos.invested))
	if pos.invested.IsPositive() {
		pct := models.NewPercent(value.Sub(pos.invested).Div(pos.invested).Mul(hundred))
		fund.GainPercent = &pct
	}

	return fund, value
}

// goalProgress builds the goal block, or nil when no target is configured.
// The projection assumes contributions continue at the configured monthly
// rate with no growth; it disappears once the target is reached.
func (s *Service) goalProgress(totalValue decimal.Decimal, snapshot *models.PortfolioSnapshot) *models.GoalProgress {
	if s.goal.TargetAmount <= 0 {
		return nil
	}

	target := decimal.NewFromFloat(s.goal.TargetAmount)
	goal := &models.GoalProgress{
		Target:   models.NewMoney(target),
		Progress: models.NewPercent(totalValue.Div(target).Mul(hundred)),
	}

	if s.goal.MonthlyContribution > 0 && totalValue.LessThan(target) {
		monthly := decimal.NewFromFloat(s.goal.MonthlyContribution)
		months := target.Sub(totalValue).Div(monthly).Ceil().IntPart()
		goal.ProjectedDate = snapshot.AsOf.AddDate(0, int(months), 0).Format(models.DateLayout)
	}

	return goal
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
