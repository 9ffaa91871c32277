package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/basket/internal/clients/eodhd"
	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/services/basket"
	"github.com/bobmcallan/basket/internal/services/feed"
	"github.com/bobmcallan/basket/internal/services/quote"
	"github.com/bobmcallan/basket/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core wired by cmd/basket-server.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Store         interfaces.BasketStore
	EODHDClient   interfaces.EODHDClient
	QuoteService  interfaces.QuoteService
	BasketService interfaces.BasketService
	Feed          *feed.Hub
	MCPServer     *server.MCPServer
	StartupTime   time.Time

	scheduler *Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, BASKET_CONFIG, the binary
// directory and finally config/basket.toml.
func resolveConfigPath(configPath, binDir string) string {
	if configPath == "" {
		configPath = os.Getenv("BASKET_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "basket.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/basket.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes storage, clients, services and
// the MCP server. configPath may be empty.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	config, err := common.LoadConfig(resolveConfigPath(configPath, binDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths against the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	// A file output error is already logged; console output remains.
	logger, _ := common.NewLoggerFromConfig(config.Logging)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		if config.IsProduction() {
			return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
		logger.Warn().Str("missing", strings.Join(missing, ", ")).Msg("Configuration incomplete - some features may be limited")
	}

	ctx := context.Background()
	store, err := storage.NewBasketStore(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	eodhdClient := eodhd.NewClientFromConfig(config.Clients.EODHD, logger)
	quoteService := quote.NewService(eodhdClient, config.Clients.EODHD.Exchange, config.Quotes.GetCacheTTL(), logger)

	hub := feed.NewHub(logger)
	go hub.Run()

	basketService := basket.NewService(store, quoteService, hub, config.Display.CurrencySymbol, logger)

	mcpServer := server.NewMCPServer(
		"basket",
		common.GetVersionInfo().Version,
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:        config,
		Logger:        logger,
		Store:         store,
		EODHDClient:   eodhdClient,
		QuoteService:  quoteService,
		BasketService: basketService,
		Feed:          hub,
		MCPServer:     mcpServer,
		StartupTime:   startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartPriceScheduler registers the price refresh job and starts the
// scheduler. It does nothing when the scheduler is disabled.
func (a *App) StartPriceScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Price scheduler disabled")
		return nil
	}

	s := NewScheduler(a.Logger)
	job := &priceRefreshJob{
		baskets: a.BasketService,
		logger:  a.Logger,
		timeout: 5 * time.Minute,
	}
	if err := s.AddJob(a.Config.Scheduler.PriceRefresh, job); err != nil {
		return err
	}
	s.Start()
	a.scheduler = s
	return nil
}

// Close releases all resources held by the App. It is safe to call more than once.
// Shutdown order: scheduler, feed, storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Feed != nil {
		a.Feed.Stop()
		a.Feed = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close basket store")
		}
		a.Store = nil
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	bs := a.BasketService
	cur := a.Config.Display.CurrencySymbol
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createListBasketsTool(), handleListBaskets(bs, cur, logger))
	s.AddTool(createGetBasketTool(), handleGetBasket(bs, cur, logger))
	s.AddTool(createPortfolioSummaryTool(), handlePortfolioSummary(bs, cur, logger))
	s.AddTool(createAllocateBasketTool(), handleAllocateBasket(bs, cur, logger))
	s.AddTool(createComputeXIRRTool(), handleComputeXIRR())
}
