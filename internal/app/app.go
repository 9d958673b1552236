// Package app wires configuration, storage, the NAV source, and the
// services into a runnable valuation pipeline. It is the shared core
// used by cmd/sipfolio.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/sipfolio/internal/clients/amfi"
	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/services/funds"
	"github.com/bobmcallan/sipfolio/internal/services/history"
	"github.com/bobmcallan/sipfolio/internal/services/portfolio"
	"github.com/bobmcallan/sipfolio/internal/services/pricing"
	"github.com/bobmcallan/sipfolio/internal/storage"
)

// App holds all initialized services and clients for one valuation run.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	AMFIClient       interfaces.PriceSource
	HistoryService   interfaces.HistoryService
	FundRegistry     interfaces.FundRegistry
	PricingService   interfaces.PricingService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolvePath anchors a relative config path to the binary directory so a
// deployed layout is self-contained. Empty and absolute paths pass through.
func resolvePath(binDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(binDir, path)
}

// NewApp initializes storage, the NAV client, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, SIPFOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("SIPFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sipfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "sipfolio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative data paths to the binary directory
	config.History.Path = resolvePath(binDir, config.History.Path)
	config.Funds.Path = resolvePath(binDir, config.Funds.Path)
	config.Storage.File.Path = resolvePath(binDir, config.Storage.File.Path)

	// Initialize logger; every event carries the run id
	logger := common.NewLogger(config.Logging.Level).WithRun(uuid.NewString()[:8])

	// Initialize storage
	store, err := storage.NewStore(logger, config.Storage.File.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize the NAV source
	amfiClient := amfi.NewClient(
		amfi.WithBaseURL(config.Clients.AMFI.BaseURL),
		amfi.WithLogger(logger),
		amfi.WithRateLimit(config.Clients.AMFI.RateLimit),
		amfi.WithTimeout(config.Clients.AMFI.GetTimeout()),
	)

	// Load the fund registry
	registry, err := funds.LoadRegistry(logger, config.Funds.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load fund registry: %w", err)
	}

	// Initialize services
	historyService := history.NewService(logger, config.History.Path)
	pricingService := pricing.NewService(amfiClient, store, logger,
		config.Clients.AMFI.GetMaxConcurrent(), config.Clients.AMFI.GetLookupTimeout())
	portfolioService := portfolio.NewService(registry, config.Goal, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          store,
		AMFIClient:       amfiClient,
		HistoryService:   historyService,
		FundRegistry:     registry,
		PricingService:   pricingService,
		PortfolioService: portfolioService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
