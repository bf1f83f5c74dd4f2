package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"aiwealth/internal/domain/models"
	domrepo "aiwealth/internal/domain/repository"
	domsvc "aiwealth/internal/domain/service"
	"aiwealth/internal/services/profiles"
	xhttp "aiwealth/pkg/http"
	pkgqueue "aiwealth/pkg/queue"
)

// View modes for the validation table.
const (
	ViewAll     = "ALL"
	ViewManual  = "MANUAL"
	ViewBlocked = "BLOCKED"
)

// ReplayJobType is the queue message type for run replays.
const ReplayJobType = "run_replay"

// ConsoleUseCase serves the operator console: validation tables, run logs,
// settings and replays.
type ConsoleUseCase struct {
	brain    domsvc.Enricher
	backend  domsvc.ReportFetcher
	profiles domsvc.ProfileFetcher
	settings domrepo.SettingsStore
	runlog   domrepo.RunLogStore
	queue    pkgqueue.QueueService
	timeout  time.Duration
}

func NewConsoleUseCase(
	brain domsvc.Enricher,
	backend domsvc.ReportFetcher,
	profileFetcher domsvc.ProfileFetcher,
	settings domrepo.SettingsStore,
	runlog domrepo.RunLogStore,
	queue pkgqueue.QueueService,
) *ConsoleUseCase {
	return &ConsoleUseCase{
		brain:    brain,
		backend:  backend,
		profiles: profileFetcher,
		settings: settings,
		runlog:   runlog,
		queue:    queue,
		timeout:  10 * time.Second,
	}
}

// EvaluateDirect runs the brain over caller-supplied payloads. This is the
// raw core-business endpoint: no fetching, no persistence.
func (uc *ConsoleUseCase) EvaluateDirect(settingsJSON, tableJSON []byte, viewMode string) *models.Result {
	return uc.brain.EvaluateView(settingsJSON, tableJSON, normalizeView(viewMode))
}

// Table fetches the latest control run for env, evaluates it with the
// current settings, then filters and orders rows for the requested view.
func (uc *ConsoleUseCase) Table(ctx context.Context, env, viewMode string) (*models.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	report, err := uc.backend.FetchControlRun(ctx, env, "")
	if err != nil {
		return nil, xhttp.NotFoundErrorf("no control run for env %s", env).WithError(err)
	}

	settingsPayload, err := uc.settings.Get(ctx)
	if err != nil {
		// evaluate anyway; the brain flags missing settings itself
		settingsPayload = nil
	}

	view := normalizeView(viewMode)
	run := uc.brain.EvaluateView(settingsPayload, report.Payload, view)
	if run.Meta.RunDate == "" {
		run.Meta.RunDate = report.RunDate
	}
	run.Meta.Env = report.Env

	run.Rows = filterRows(run.Rows, view)
	sortByRisk(run.Rows)
	return run, nil
}

// Runlog returns persisted run summaries, newest first.
func (uc *ConsoleUseCase) Runlog(ctx context.Context, req *models.RunlogRequest) ([]models.RunLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.runlog.QueryRuns(ctx, req.RunDate, req.Env, req.Limit)
}

// GetSettings returns the raw settings payload, or an empty object when
// none has been saved yet.
func (uc *ConsoleUseCase) GetSettings(ctx context.Context) ([]byte, error) {
	payload, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []byte("{}"), nil
	}
	return payload, nil
}

// UpdateSettings merges the non-nil request fields into the stored payload.
// Fields the request leaves nil keep their stored value, so a partial update
// never wipes keys the console does not know about.
func (uc *ConsoleUseCase) UpdateSettings(ctx context.Context, req *models.SettingsUpdateRequest) ([]byte, error) {
	current, err := uc.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	merged := map[string]interface{}{}
	if err := json.Unmarshal(current, &merged); err != nil {
		merged = map[string]interface{}{}
	}
	if req.CreamyLayerSize != nil {
		merged["creamy_layer_size"] = *req.CreamyLayerSize
	}
	if req.MaxDailyLossPct != nil {
		merged["max_daily_loss_pct"] = *req.MaxDailyLossPct
	}
	if req.MaxPerTradeCapitalPct != nil {
		merged["max_per_trade_capital_pct"] = *req.MaxPerTradeCapitalPct
	}
	if req.AutoApproveThresholdExpectedPct != nil {
		merged["auto_approve_threshold_expected_pct"] = *req.AutoApproveThresholdExpectedPct
	}
	if req.AutoApproveMinConfidence != nil {
		merged["auto_approve_min_confidence"] = *req.AutoApproveMinConfidence
	}
	if req.EnvironmentMode != nil {
		merged["environment_mode"] = *req.EnvironmentMode
	}
	if req.BaseCurrency != nil {
		merged["base_currency"] = *req.BaseCurrency
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	if err := uc.settings.Put(ctx, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Replay enqueues a re-evaluation of a past run through the queue.
func (uc *ConsoleUseCase) Replay(ctx context.Context, req *models.ReplayRequest) error {
	if uc.queue == nil {
		return xhttp.InternalError("replay queue not configured")
	}
	return uc.queue.PublishMessage(ctx, ReplayJobType, map[string]interface{}{
		"run_date": req.RunDate,
		"env":      req.Env,
	})
}

// Baselines evaluates the latest run and folds rows into per-profile metric
// baselines, using the backend's broker mapping when available.
func (uc *ConsoleUseCase) Baselines(ctx context.Context, env string) ([]profiles.Baseline, error) {
	run, err := uc.Table(ctx, env, ViewAll)
	if err != nil {
		return nil, err
	}
	brokerMap := run.Meta.ProfileBrokerMap
	if uc.profiles != nil {
		if m, err := uc.profiles.FetchProfileBrokerMap(ctx); err == nil && len(m) > 0 {
			brokerMap = m
		}
	}
	return profiles.ComputeBaselines(run.Rows, brokerMap), nil
}

// Dashboard is the one-shot console view: table, run log and settings
// fetched in parallel. Partial failures land in Errors instead of failing
// the whole response.
type Dashboard struct {
	Env      string               `json:"env"`
	Table    *models.Result       `json:"table"`
	Runlog   []models.RunLogEntry `json:"runlog"`
	Settings json.RawMessage      `json:"settings"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

func (uc *ConsoleUseCase) GetDashboard(ctx context.Context, env string) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &Dashboard{Env: env, Errors: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)

	go func() {
		v, err := uc.Table(ctx, env, ViewAll)
		ch <- item{"table", v, err}
	}()
	go func() {
		v, err := uc.Runlog(ctx, &models.RunlogRequest{Env: env, Limit: 20})
		ch <- item{"runlog", v, err}
	}()
	go func() {
		v, err := uc.GetSettings(ctx)
		ch <- item{"settings", v, err}
	}()

	for i := 0; i < 3; i++ {
		it := <-ch
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "table":
			res.Table = it.val.(*models.Result)
		case "runlog":
			res.Runlog = it.val.([]models.RunLogEntry)
		case "settings":
			res.Settings = json.RawMessage(it.val.([]byte))
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func normalizeView(view string) string {
	switch view {
	case ViewManual, ViewBlocked:
		return view
	default:
		return ViewAll
	}
}

func filterRows(rows []models.EnrichedRow, view string) []models.EnrichedRow {
	switch view {
	case ViewManual:
		out := make([]models.EnrichedRow, 0, len(rows))
		for _, r := range rows {
			if r.ShowForManualApproval && r.SafetyClass != "BLOCK" {
				out = append(out, r)
			}
		}
		return out
	case ViewBlocked:
		out := make([]models.EnrichedRow, 0, len(rows))
		for _, r := range rows {
			if r.SafetyClass == "BLOCK" {
				out = append(out, r)
			}
		}
		return out
	default:
		return rows
	}
}

// sortByRisk orders safest first, then highest expected return, then symbol
// so equal rows always land in the same place.
func sortByRisk(rows []models.EnrichedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := safetyRank(rows[i].SafetyClass), safetyRank(rows[j].SafetyClass)
		if ri != rj {
			return ri < rj
		}
		ei, ej := expectedOrNegInf(rows[i]), expectedOrNegInf(rows[j])
		if ei != ej {
			return ei > ej
		}
		return rows[i].Symbol < rows[j].Symbol
	})
}

func safetyRank(class string) int {
	switch class {
	case "SAFE":
		return 0
	case "WATCH":
		return 1
	case "BLOCK":
		return 2
	default:
		return 3
	}
}

func expectedOrNegInf(r models.EnrichedRow) float64 {
	if r.ExpectedReturnPct == nil {
		return -1e18 // nulls sort last within a class
	}
	return *r.ExpectedReturnPct
}
