// Package funds resolves raw fund names against the configured registry.
package funds

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

// Registry holds the ordered fund descriptors loaded from configuration.
type Registry struct {
	descriptors []models.FundDescriptor
	patterns    []string // lowercased Match per descriptor
	logger      *common.Logger
}

type registryFile struct {
	Funds []models.FundDescriptor `toml:"funds"`
}

// DefaultDescriptors returns the built-in registry used when no funds file
// is configured.
func DefaultDescriptors() []models.FundDescriptor {
	return []models.FundDescriptor{
		{Match: "kotak arbitrage", ISIN: "INF174K01LC6", Short: "KA", Color: "#3d8bff", House: "Kotak"},
		{Match: "icici prudential multi", ISIN: "INF109K015K4", Short: "MA", Color: "#fbbf24", House: "ICICI"},
		{Match: "icici prudential equity savings", ISIN: "INF109KA11J9", Short: "ES", Color: "#34d399", House: "ICICI"},
	}
}

// LoadRegistry reads fund descriptors from a TOML file. An empty path loads
// the built-in defaults; an unreadable or unparsable file is an error.
func LoadRegistry(logger *common.Logger, path string) (*Registry, error) {
	var descriptors []models.FundDescriptor
	if path == "" {
		descriptors = DefaultDescriptors()
		logger.Info().Int("funds", len(descriptors)).Msg("Using built-in fund registry")
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fund registry %s: %w", path, err)
		}
		var file registryFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse fund registry %s: %w", path, err)
		}
		descriptors = file.Funds
		logger.Info().Str("path", path).Int("funds", len(descriptors)).Msg("Fund registry loaded")
	}

	r := &Registry{logger: logger}
	for i, d := range descriptors {
		if strings.TrimSpace(d.Match) == "" {
			logger.Warn().Int("entry", i+1).Msg("Fund registry entry has no match pattern, skipping")
			continue
		}
		r.descriptors = append(r.descriptors, d)
		r.patterns = append(r.patterns, strings.ToLower(d.Match))
	}

	if len(r.descriptors) == 0 {
		logger.Warn().Msg("Fund registry is empty, all funds will be unmatched")
	}

	return r, nil
}

// Resolve returns the first descriptor whose pattern is a substring of the
// case-folded fund name, with its registry position. Unmatched names get a
// synthesized descriptor and index -1.
func (r *Registry) Resolve(fundName string) (models.FundDescriptor, int) {
	folded := strings.ToLower(fundName)
	for i, pattern := range r.patterns {
		if strings.Contains(folded, pattern) {
			return r.descriptors[i], i
		}
	}
	return models.UnknownDescriptor(fundName), -1
}

// Descriptors returns the registry entries in order.
func (r *Registry) Descriptors() []models.FundDescriptor {
	out := make([]models.FundDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Ensure Registry implements FundRegistry
var _ interfaces.FundRegistry = (*Registry)(nil)
