package repository

import (
	"context"

	"aiwealth/internal/domain/models"
)

// ReportStream is a push feed of control-run reports from the
// signal-generation backend.
type ReportStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Report, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes evaluated runs onto the enriched-rows bus.
type Publisher interface {
	Publish(ctx context.Context, run *models.Result) error
	Close() error
}

// RunLogStore persists evaluated runs for audit and serves the run-log API.
type RunLogStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreRun(ctx context.Context, run *models.Result) error
	QueryRuns(ctx context.Context, runDate, env string, limit int) ([]models.RunLogEntry, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// SettingsStore holds the raw settings payload the brain computes with.
// Payloads stay bytes end to end so unknown fields survive a round trip.
type SettingsStore interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, payload []byte) error
}

// Metrics records operational counters for the console.
type Metrics interface {
	RecordRunEvaluated(env, mode string)
	RecordRowsEnriched(env string, n int)
	RecordBlocked(env string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
