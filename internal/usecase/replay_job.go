package usecase

import (
	"context"
	"fmt"

	domsvc "aiwealth/internal/domain/service"
	pkgqueue "aiwealth/pkg/queue"
)

// ReplayPayload is the queue message body for a run replay.
type ReplayPayload struct {
	RunDate string `json:"run_date"`
	Env     string `json:"env"`
}

// ReplayJob re-fetches a past control run from the backend and pushes it
// through the processor again, e.g. after a settings change.
type ReplayJob struct {
	backend domsvc.ReportFetcher
	proc    *ReportProcessor
}

func NewReplayJob(backend domsvc.ReportFetcher, proc *ReportProcessor) *ReplayJob {
	return &ReplayJob{backend: backend, proc: proc}
}

func (j *ReplayJob) Name() string { return "run replay" }

func (j *ReplayJob) Type() string { return ReplayJobType }

func (j *ReplayJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := pkgqueue.ParsePayload[ReplayPayload](payload)
	if err != nil {
		return fmt.Errorf("replay payload: %w", err)
	}
	if p.Env == "" {
		return fmt.Errorf("replay env required")
	}

	report, err := j.backend.FetchControlRun(ctx, p.Env, p.RunDate)
	if err != nil {
		return fmt.Errorf("replay fetch: %w", err)
	}
	if report.RunDate == "" {
		report.RunDate = p.RunDate
	}
	return j.proc.Process(ctx, report)
}

var _ pkgqueue.Job = (*ReplayJob)(nil)
