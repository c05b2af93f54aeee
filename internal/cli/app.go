package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pankajredekar/lemonmenu/internal/config"
	"github.com/pankajredekar/lemonmenu/internal/fetcher"
	"github.com/pankajredekar/lemonmenu/internal/store"
	menusync "github.com/pankajredekar/lemonmenu/internal/sync"
	"github.com/pankajredekar/lemonmenu/internal/telemetry"
	"github.com/pankajredekar/lemonmenu/internal/utils"
	"go.opentelemetry.io/otel"
)

// app bundles the components every command works with
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *store.MenuStore
	coordinator *menusync.Coordinator
	closeDB     func() error
}

// loadApp reads and validates the config, connects to the database and
// builds the store and sync coordinator
func loadApp() (*app, error) {
	if !utils.FileExists(configPath) {
		return nil, fmt.Errorf("%s not found. Run 'lemonmenu init' first", configPath)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := connectDB(cfg.DatabaseURL, level)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}

	menuStore, err := store.Open(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	metrics, err := telemetry.NewSyncMetrics(otel.GetMeterProvider())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	coordinator := menusync.New(menuStore,
		fetcher.NewHTTPFetcher(cfg.MenuURL, cfg.HTTPTimeout),
		menusync.WithLogger(logger),
		menusync.WithMetrics(metrics),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		store:       menuStore,
		coordinator: coordinator,
		closeDB:     sqlDB.Close,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	if err := a.closeDB(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

// mustLoadApp is loadApp for command handlers: failures end the process
func mustLoadApp() *app {
	a, err := loadApp()
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	return a
}
