// Package sync populates the local menu cache from the remote endpoint.
//
// The cache is filled at most once: when the store already holds records it
// is treated as authoritative and the network is never touched.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pankajredekar/lemonmenu/internal/fetcher"
	"github.com/pankajredekar/lemonmenu/internal/model"
	"github.com/pankajredekar/lemonmenu/internal/telemetry"
)

// Store is the part of the menu store the coordinator writes to
type Store interface {
	IsEmpty(ctx context.Context) (bool, error)
	InsertAll(ctx context.Context, records []model.MenuRecord) error
}

// Result describes what a sync run did
type Result struct {
	// Fetched is true when the store was empty and the remote menu was downloaded
	Fetched bool
	// Records is the number of records written
	Records int
}

// Coordinator runs the "fetch if empty" sync
type Coordinator struct {
	store   Store
	fetcher fetcher.Fetcher
	logger  *slog.Logger
	metrics *telemetry.SyncMetrics
}

// Option is a function that configures the coordinator
type Option func(*Coordinator)

// WithLogger sets the logger used for run and task events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets the sync metrics for the coordinator
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// New creates a new coordinator
func New(store Store, f fetcher.Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs one sync in the calling goroutine.
// Errors from the store, the fetcher and price parsing are returned as-is
// (wrapped), leaving the store untouched.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	result, err := c.run(ctx)
	c.metrics.RecordSyncDuration(ctx, time.Since(start), result.Fetched, err == nil)
	if err == nil {
		c.metrics.RecordInserted(ctx, result.Records)
	}
	return result, err
}

func (c *Coordinator) run(ctx context.Context) (Result, error) {
	empty, err := c.store.IsEmpty(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check menu cache: %w", err)
	}
	if !empty {
		c.logger.Debug("Menu cache already populated, skipping fetch")
		return Result{}, nil
	}

	c.logger.Info("Menu cache is empty, fetching remote menu")
	entries, err := c.fetcher.FetchMenu(ctx)
	if err != nil {
		return Result{Fetched: true}, fmt.Errorf("failed to fetch menu: %w", err)
	}

	records, err := model.ToRecords(entries)
	if err != nil {
		return Result{Fetched: true}, fmt.Errorf("failed to normalize menu: %w", err)
	}

	if err := c.store.InsertAll(ctx, records); err != nil {
		return Result{Fetched: true}, fmt.Errorf("failed to save menu: %w", err)
	}

	c.logger.Info("Menu cache populated", "records", len(records))
	return Result{Fetched: true, Records: len(records)}, nil
}
