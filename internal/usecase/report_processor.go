package usecase

import (
	"context"
	"fmt"
	"time"

	"aiwealth/internal/domain/models"
	drepo "aiwealth/internal/domain/repository"
	dservice "aiwealth/internal/domain/service"
)

// ReportProcessor evaluates incoming reports through the brain and routes
// the evaluated run to the configured backend.
type ReportProcessor struct {
	brain    dservice.Enricher
	settings drepo.SettingsStore
	pub      drepo.Publisher
	store    drepo.RunLogStore
	metrics  drepo.Metrics
	backend  string
}

// NewReportProcessor creates a new ReportProcessor instance.
func NewReportProcessor(
	brain dservice.Enricher,
	settings drepo.SettingsStore,
	pub drepo.Publisher,
	store drepo.RunLogStore,
	metrics drepo.Metrics,
	backend string,
) *ReportProcessor {
	return &ReportProcessor{
		brain:    brain,
		settings: settings,
		pub:      pub,
		store:    store,
		metrics:  metrics,
		backend:  backend,
	}
}

// Process evaluates a single report and routes the run to the configured backend.
func (p *ReportProcessor) Process(ctx context.Context, r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	start := time.Now()

	settingsPayload, err := p.settings.Get(ctx)
	if err != nil {
		// the brain degrades to SAFE_GUARD on missing settings; keep going
		p.metrics.RecordError("settings_fetch")
		settingsPayload = nil
	}

	run := p.brain.Evaluate(settingsPayload, r.Payload)
	if run.Meta.RunDate == "" {
		run.Meta.RunDate = r.RunDate
	}
	run.Meta.Env = r.Env

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, run)
	case "clickhouse":
		err = p.store.StoreRun(ctx, run)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process report: %w", err)
	}

	p.metrics.RecordRunEvaluated(r.Env, run.Meta.Mode)
	p.metrics.RecordRowsEnriched(r.Env, len(run.Rows))
	p.metrics.RecordBlocked(r.Env, run.Summary.BlockedByRiskCount)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *ReportProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
