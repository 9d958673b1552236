// Package history loads transaction history from CSV exports.
package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

// expectedHeader is the contract for every history export. Files with any
// other first row are skipped whole rather than guessed at.
var expectedHeader = []string{
	"date", "folio", "fundHouse", "fundName",
	"invested", "units", "historicalNAV", "historicalValue",
}

// Service reads history CSV files from a single directory.
type Service struct {
	path   string
	logger *common.Logger
}

// NewService creates a new history service reading from path.
func NewService(logger *common.Logger, path string) *Service {
	return &Service{
		path:   path,
		logger: logger,
	}
}

// LoadRecords reads every *.csv file under the history directory in filename
// order and returns the combined records sorted by date ascending. Files with
// an unexpected header and rows that fail to parse are skipped with a warning;
// a missing directory is an error.
func (s *Service) LoadRecords(ctx context.Context) (*models.HistoryLoad, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory %s: %w", s.path, err)
	}

	load := &models.HistoryLoad{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		records, skipped, err := s.loadFile(filepath.Join(s.path, entry.Name()))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("History file skipped")
			load.SkippedFiles++
			continue
		}

		load.Files++
		load.SkippedRows += skipped
		load.Records = append(load.Records, records...)
	}

	if load.Files == 0 {
		s.logger.Warn().Str("path", s.path).Msg("No history files found")
	}

	// Filename order already makes the input deterministic; a stable sort
	// keeps same-day records in that order.
	sort.SliceStable(load.Records, func(i, j int) bool {
		return load.Records[i].Date.Before(load.Records[j].Date)
	})

	s.logger.Info().
		Int("files", load.Files).
		Int("records", len(load.Records)).
		Int("skipped_files", load.SkippedFiles).
		Int("skipped_rows", load.SkippedRows).
		Msg("History loaded")

	return load, nil
}

// loadFile parses one CSV file. The returned count is rows skipped for
// parse errors; an error means the whole file was unusable.
func (s *Service) loadFile(path string) ([]models.HistoryRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	s.logger.Debug().Str("file", name).Msg("Reading history file")

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, 0, err
	}

	var records []models.HistoryRecord
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			s.logger.Warn().Err(err).Str("file", name).Int("line", line).Msg("History row skipped")
			skipped++
			continue
		}
		if isBlankRow(row) {
			continue
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRow(row)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Int("line", line).Msg("History row skipped")
			skipped++
			continue
		}

		record.SourceFile = name
		record.SourceLine = line
		records = append(records, record)
	}

	return records, skipped, nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, strings.TrimSpace(header[i]), want)
		}
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (models.HistoryRecord, error) {
	var record models.HistoryRecord
	if len(row) < len(expectedHeader) {
		return record, fmt.Errorf("row has %d columns, want %d", len(row), len(expectedHeader))
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return record, fmt.Errorf("invalid date %q: %w", strings.TrimSpace(row[0]), err)
	}

	amounts := make([]decimal.Decimal, 4)
	for i, column := range []string{"invested", "units", "historicalNAV", "historicalValue"} {
		value, err := decimal.NewFromString(strings.TrimSpace(row[4+i]))
		if err != nil {
			return record, fmt.Errorf("invalid %s %q: %w", column, strings.TrimSpace(row[4+i]), err)
		}
		amounts[i] = value
	}

	record = models.HistoryRecord{
		Date:            date,
		Folio:           strings.TrimSpace(row[1]),
		FundHouse:       strings.TrimSpace(row[2]),
		FundName:        strings.ReplaceAll(strings.TrimSpace(row[3]), `"`, ""),
		Invested:        amounts[0],
		Units:           amounts[1],
		HistoricalNAV:   amounts[2],
		HistoricalValue: amounts[3],
	}
	return record, nil
}

// Ensure Service implements HistoryService
var _ interfaces.HistoryService = (*Service)(nil)
