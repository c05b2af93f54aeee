// Package telemetry provides OpenTelemetry instruments for menu synchronization.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/pankajredekar/lemonmenu/sync"

// SyncMetrics holds the OpenTelemetry instruments for sync runs
type SyncMetrics struct {
	syncDuration    metric.Float64Histogram
	recordsInserted metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"lemonmenu_sync_duration_seconds",
		metric.WithDescription("Duration of menu sync runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	recordsInserted, err := meter.Int64Counter(
		"lemonmenu_sync_records_inserted_total",
		metric.WithDescription("Menu records written by sync runs"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:    syncDuration,
		recordsInserted: recordsInserted,
	}, nil
}

// RecordSyncDuration records how long a sync run took
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, duration time.Duration, fetched, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("fetched", fetched),
		attribute.Bool("success", success),
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordInserted adds n to the inserted records counter
func (m *SyncMetrics) RecordInserted(ctx context.Context, n int) {
	if m == nil || m.recordsInserted == nil || n <= 0 {
		return
	}
	m.recordsInserted.Add(ctx, int64(n))
}
