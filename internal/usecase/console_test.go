package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwealth/internal/domain/models"
)

type fakeReportFetcher struct {
	report *models.Report
	err    error
}

func (f *fakeReportFetcher) FetchControlRun(ctx context.Context, env, runDate string) (*models.Report, error) {
	return f.report, f.err
}

type fakeProfileFetcher struct {
	brokerMap map[string]string
	err       error
}

func (f *fakeProfileFetcher) FetchProfileBrokerMap(ctx context.Context) (map[string]string, error) {
	return f.brokerMap, f.err
}

type fakeQueue struct {
	types    []string
	payloads []interface{}
	err      error
}

func (f *fakeQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.types = append(f.types, msgType)
	f.payloads = append(f.payloads, payload)
	return nil
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func row(symbol, class string, expected *float64, manual bool) models.EnrichedRow {
	return models.EnrichedRow{
		Symbol:                symbol,
		SafetyClass:           class,
		ExpectedReturnPct:     expected,
		ShowForManualApproval: manual,
	}
}

func newConsole(brain *fakeEnricher, fetcher *fakeReportFetcher, settings *fakeSettingsStore, q *fakeQueue) *ConsoleUseCase {
	return NewConsoleUseCase(brain, fetcher, &fakeProfileFetcher{}, settings, &fakeRunLogStore{}, q)
}

func TestTableFiltersAndSorts(t *testing.T) {
	rows := []models.EnrichedRow{
		row("BLOCKED1", "BLOCK", fptr(9), true),
		row("LOW", "SAFE", fptr(1), true),
		row("HIGH", "SAFE", fptr(8), true),
		row("WATCHY", "WATCH", fptr(12), true),
		row("HIDDEN", "SAFE", fptr(3), false),
	}
	brain := &fakeEnricher{result: &models.Result{
		Rows: rows,
		Meta: models.RunMeta{Mode: "NORMAL"},
	}}
	fetcher := &fakeReportFetcher{report: sampleReport()}
	uc := newConsole(brain, fetcher, &fakeSettingsStore{}, &fakeQueue{})

	run, err := uc.Table(context.Background(), "SIM", ViewManual)
	require.NoError(t, err)
	assert.Equal(t, ViewManual, brain.viewSeen)

	// BLOCK and non-manual rows are out; SAFE before WATCH, expected desc inside.
	var symbols []string
	for _, r := range run.Rows {
		symbols = append(symbols, r.Symbol)
	}
	assert.Equal(t, []string{"HIGH", "LOW", "WATCHY"}, symbols)
	assert.Equal(t, "SIM", run.Meta.Env)
	assert.Equal(t, "2025-12-15", run.Meta.RunDate)
}

func TestTableBlockedView(t *testing.T) {
	brain := &fakeEnricher{result: &models.Result{
		Rows: []models.EnrichedRow{
			row("OK", "SAFE", fptr(5), true),
			row("BAD", "BLOCK", nil, false),
		},
	}}
	uc := newConsole(brain, &fakeReportFetcher{report: sampleReport()}, &fakeSettingsStore{}, &fakeQueue{})

	run, err := uc.Table(context.Background(), "SIM", ViewBlocked)
	require.NoError(t, err)
	require.Len(t, run.Rows, 1)
	assert.Equal(t, "BAD", run.Rows[0].Symbol)
}

func TestTableFetchFailure(t *testing.T) {
	uc := newConsole(&fakeEnricher{}, &fakeReportFetcher{err: errors.New("backend 502")}, &fakeSettingsStore{}, &fakeQueue{})
	_, err := uc.Table(context.Background(), "SIM", ViewAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no control run")
	assert.Contains(t, err.Error(), "backend 502")
}

func TestSortByRiskNullsLast(t *testing.T) {
	rows := []models.EnrichedRow{
		row("NULL", "SAFE", nil, true),
		row("NEG", "SAFE", fptr(-2), true),
		row("POS", "SAFE", fptr(4), true),
	}
	sortByRisk(rows)
	assert.Equal(t, "POS", rows[0].Symbol)
	assert.Equal(t, "NEG", rows[1].Symbol)
	assert.Equal(t, "NULL", rows[2].Symbol)
}

func TestNormalizeView(t *testing.T) {
	assert.Equal(t, ViewAll, normalizeView(""))
	assert.Equal(t, ViewAll, normalizeView("whatever"))
	assert.Equal(t, ViewManual, normalizeView("MANUAL"))
	assert.Equal(t, ViewBlocked, normalizeView("BLOCKED"))
}

func TestGetSettingsEmpty(t *testing.T) {
	uc := newConsole(&fakeEnricher{}, &fakeReportFetcher{}, &fakeSettingsStore{}, &fakeQueue{})
	payload, err := uc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload))
}

func TestUpdateSettingsPartialMerge(t *testing.T) {
	settings := &fakeSettingsStore{payload: []byte(`{
		"creamy_layer_size": 150,
		"base_currency": "INR",
		"custom_flag": true
	}`)}
	uc := newConsole(&fakeEnricher{}, &fakeReportFetcher{}, settings, &fakeQueue{})

	payload, err := uc.UpdateSettings(context.Background(), &models.SettingsUpdateRequest{
		MaxDailyLossPct: fptr(2.5),
		EnvironmentMode: sptr("PROD"),
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &got))

	// Updated fields land, untouched and unknown fields survive.
	assert.Equal(t, 2.5, got["max_daily_loss_pct"])
	assert.Equal(t, "PROD", got["environment_mode"])
	assert.Equal(t, 150.0, got["creamy_layer_size"])
	assert.Equal(t, "INR", got["base_currency"])
	assert.Equal(t, true, got["custom_flag"])

	assert.Equal(t, payload, settings.payload)
}

func TestReplayEnqueues(t *testing.T) {
	q := &fakeQueue{}
	uc := newConsole(&fakeEnricher{}, &fakeReportFetcher{}, &fakeSettingsStore{}, q)

	err := uc.Replay(context.Background(), &models.ReplayRequest{RunDate: "2025-12-10", Env: "SIM"})
	require.NoError(t, err)
	require.Len(t, q.types, 1)
	assert.Equal(t, ReplayJobType, q.types[0])
	assert.Equal(t, map[string]interface{}{"run_date": "2025-12-10", "env": "SIM"}, q.payloads[0])
}

func TestDashboardPartialFailure(t *testing.T) {
	brain := &fakeEnricher{result: &models.Result{Rows: []models.EnrichedRow{row("TCS", "SAFE", fptr(3), true)}}}
	uc := newConsole(brain, &fakeReportFetcher{report: sampleReport()}, &fakeSettingsStore{}, &fakeQueue{})
	uc.runlog = &fakeRunLogStore{err: errors.New("clickhouse down")}

	dash, err := uc.GetDashboard(context.Background(), "SIM")
	require.NoError(t, err)
	require.NotNil(t, dash.Table)
	assert.Len(t, dash.Table.Rows, 1)
	assert.JSONEq(t, `{}`, string(dash.Settings))
	require.Contains(t, dash.Errors, "runlog")
}

func TestEvaluateDirectNormalizesView(t *testing.T) {
	brain := &fakeEnricher{}
	uc := newConsole(brain, &fakeReportFetcher{}, &fakeSettingsStore{}, &fakeQueue{})

	uc.EvaluateDirect([]byte(`{}`), []byte(`{"rows":[]}`), "bogus")
	assert.Equal(t, ViewAll, brain.viewSeen)
}
