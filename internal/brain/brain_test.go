package brain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwealth/internal/domain/models"
)

const settingsDoc = `{
	"creamy_layer_size": 200,
	"max_daily_loss_pct": 2.5,
	"environment_mode": "SIM",
	"base_currency": "INR"
}`

func tableDoc(rows string) []byte {
	return fmt.Appendf(nil, `{
		"meta": {
			"run_date": "2025-12-15",
			"env": "SIM",
			"profiles": ["CONSERVATIVE", "BALANCED"],
			"profile_broker_map": {"CONSERVATIVE": "zerodha"},
			"total_universe": 1800,
			"total_candidates": 420,
			"creamy_layer_count": 200
		},
		"rows": %s
	}`, rows)
}

const threeRows = `[
	{"symbol": "TCS", "entry_price": 100, "target_price": 110, "stop_loss": 95,
	 "ai_reason": "Risk bucket: CONSERVATIVE.", "confidence": 0.8},
	{"symbol": "INFY", "entry_price": 100, "target_price": 90, "stop_loss": 95,
	 "ai_recommendation": "BUY"},
	{"symbol": "SBIN", "entry_price": 50, "target_price": 55, "stop_loss": 48,
	 "quantity": 10, "ai_recommendation": "buy",
	 "ai_reason": "Risk bucket: CONSERVATIVE. Steady."}
]`

func TestEvaluateHappyPath(t *testing.T) {
	res := New().Evaluate([]byte(settingsDoc), tableDoc(threeRows))

	require.Len(t, res.Rows, 3)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Errors)
	assert.Equal(t, ModeNormal, res.Meta.Mode)
	assert.Equal(t, "2025-12-15", res.Meta.RunDate)
	assert.Equal(t, "SIM", res.Meta.Env)
	assert.Equal(t, []string{"CONSERVATIVE", "BALANCED"}, res.Meta.Profiles)
	assert.Equal(t, "zerodha", res.Meta.ProfileBrokerMap["CONSERVATIVE"])
	assert.Equal(t, "ALL", res.Meta.ViewMode)
	assert.Equal(t, BrainVersion, res.Meta.BrainVersion)
	assert.Equal(t, PolicyVersion, res.Meta.PolicyVersion)

	require.NotNil(t, res.Meta.SettingsUsed.CreamyLayerSize)
	assert.Equal(t, 200.0, *res.Meta.SettingsUsed.CreamyLayerSize)
	assert.Nil(t, res.Meta.SettingsUsed.MaxPerTradeCapitalPct)

	// Input order is preserved.
	assert.Equal(t, "TCS", res.Rows[0].Symbol)
	assert.Equal(t, "INFY", res.Rows[1].Symbol)
	assert.Equal(t, "SBIN", res.Rows[2].Symbol)

	// TCS: conservative, rr 2.0, down 5 -> SAFE; no recognized action -> HOLD.
	assert.Equal(t, SafetySafe, res.Rows[0].SafetyClass)
	assert.Equal(t, SuggestHold, res.Rows[0].AISuggestion)
	require.NotNil(t, res.Rows[0].ConfidencePct)
	assert.Equal(t, 80.0, *res.Rows[0].ConfidencePct)

	// INFY: negative expected -> BLOCK -> REJECT despite BUY.
	assert.Equal(t, SafetyBlock, res.Rows[1].SafetyClass)
	assert.Equal(t, SuggestReject, res.Rows[1].AISuggestion)

	// SBIN: conservative SAFE, recognized BUY passes through.
	assert.Equal(t, SafetySafe, res.Rows[2].SafetyClass)
	assert.Equal(t, SuggestBuy, res.Rows[2].AISuggestion)

	// Summary pass-throughs and totals.
	require.NotNil(t, res.Summary.TotalUniverse)
	assert.Equal(t, 1800, *res.Summary.TotalUniverse)
	assert.Equal(t, 1, res.Summary.BlockedByRiskCount)
	assert.Equal(t, 3, res.Summary.ManualApprovalCount)
	assert.InDelta(t, 500, res.Summary.TotalCapitalIfAllApproved, 1e-9)
	assert.InDelta(t, 20, res.Summary.EstimatedDailyLossIfAllSLHit, 1e-9)
}

func TestEvaluateSummaryCountsSumToRows(t *testing.T) {
	res := New().Evaluate([]byte(settingsDoc), tableDoc(threeRows))

	classTotal := 0
	for _, n := range res.Summary.SafetyClassCounts {
		classTotal += n
	}
	suggestTotal := 0
	for _, n := range res.Summary.SuggestionCounts {
		suggestTotal += n
	}
	assert.Equal(t, len(res.Rows), classTotal)
	assert.Equal(t, len(res.Rows), suggestTotal)

	// Fixed key sets are always present, even at zero.
	for _, k := range []string{"SAFE", "WATCH", "BLOCK", "UNKNOWN"} {
		assert.Contains(t, res.Summary.SafetyClassCounts, k)
	}
	for _, k := range []string{"APPROVE", "HOLD", "REJECT", "BUY", "SELL", "EXIT"} {
		assert.Contains(t, res.Summary.SuggestionCounts, k)
	}
	assert.Zero(t, res.Summary.SuggestionCounts["APPROVE"])
}

func TestEvaluateEmptyRows(t *testing.T) {
	res := New().Evaluate([]byte(settingsDoc), tableDoc(`[]`))

	assert.Equal(t, ModeNormal, res.Meta.Mode)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Summary.ManualApprovalCount)
	assert.Zero(t, res.Summary.BlockedByRiskCount)
	assert.Zero(t, res.Summary.TotalCapitalIfAllApproved)
	assert.Zero(t, res.Summary.EstimatedDailyLossIfAllSLHit)
}

func TestEvaluateMissingRowsDegrades(t *testing.T) {
	res := New().Evaluate([]byte(settingsDoc), []byte(`{"meta": {"env": "SIM"}}`))

	assert.Equal(t, ModeDegraded, res.Meta.Mode)
	assert.Contains(t, res.Errors, ErrTableRowsMissing)
	assert.Empty(t, res.Rows)
	assert.Equal(t, "SIM", res.Meta.Env) // meta survives a degraded run

	notArray := New().Evaluate([]byte(settingsDoc), []byte(`{"rows": {"oops": 1}}`))
	assert.Contains(t, notArray.Errors, ErrTableRowsMissing)

	garbage := New().Evaluate([]byte(settingsDoc), []byte(`not json`))
	assert.Equal(t, ModeDegraded, garbage.Meta.Mode)
}

func TestEvaluateMissingSettingsSafeGuards(t *testing.T) {
	res := New().Evaluate(nil, tableDoc(threeRows))

	assert.Equal(t, ModeSafeGuard, res.Meta.Mode)
	assert.Contains(t, res.Warnings, WarnSettingsMissing)
	assert.Len(t, res.Rows, 3) // computation still ran
	assert.Nil(t, res.Meta.SettingsUsed.CreamyLayerSize)

	invalid := New().Evaluate([]byte(`[1,2,3]`), tableDoc(threeRows))
	assert.Contains(t, invalid.Warnings, WarnSettingsMissing)
}

func TestEvaluateErrorOutranksWarning(t *testing.T) {
	res := New().Evaluate(nil, []byte(`{}`))
	assert.Equal(t, ModeDegraded, res.Meta.Mode)
	assert.Contains(t, res.Warnings, WarnSettingsMissing)
	assert.Contains(t, res.Errors, ErrTableRowsMissing)
}

func TestEvaluateSettingsEnvelopeUnwrap(t *testing.T) {
	wrapped := []byte(`{"payload": ` + settingsDoc + `}`)
	res := New().Evaluate(wrapped, tableDoc(`[]`))

	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Meta.SettingsUsed.EnvironmentMode)
	assert.Equal(t, "SIM", *res.Meta.SettingsUsed.EnvironmentMode)
}

// Calling the brain twice with identical input must be byte-identical.
func TestEvaluateIdempotent(t *testing.T) {
	a, err := json.Marshal(New().Evaluate([]byte(settingsDoc), tableDoc(threeRows)))
	require.NoError(t, err)
	b, err := json.Marshal(New().Evaluate([]byte(settingsDoc), tableDoc(threeRows)))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// Per-row results must not depend on row order: enrich a permuted table and
// compare each symbol's row.
func TestEvaluateRowIndependence(t *testing.T) {
	permuted := `[
		{"symbol": "SBIN", "entry_price": 50, "target_price": 55, "stop_loss": 48,
		 "quantity": 10, "ai_recommendation": "buy",
		 "ai_reason": "Risk bucket: CONSERVATIVE. Steady."},
		{"symbol": "TCS", "entry_price": 100, "target_price": 110, "stop_loss": 95,
		 "ai_reason": "Risk bucket: CONSERVATIVE.", "confidence": 0.8},
		{"symbol": "INFY", "entry_price": 100, "target_price": 90, "stop_loss": 95,
		 "ai_recommendation": "BUY"}
	]`

	base := New().Evaluate([]byte(settingsDoc), tableDoc(threeRows))
	other := New().Evaluate([]byte(settingsDoc), tableDoc(permuted))

	bySymbol := func(rows []models.EnrichedRow) map[string]models.EnrichedRow {
		m := make(map[string]models.EnrichedRow, len(rows))
		for _, r := range rows {
			m[r.Symbol] = r
		}
		return m
	}
	assert.Equal(t, bySymbol(base.Rows), bySymbol(other.Rows))
	assert.Equal(t, base.Summary, other.Summary)
}

// Parallel enrichment is an optimization only: output must match the
// sequential path exactly, including row order.
func TestEvaluateParallelMatchesSequential(t *testing.T) {
	rows := `[`
	for i := 0; i < 40; i++ {
		if i > 0 {
			rows += ","
		}
		rows += fmt.Sprintf(`{"symbol": "SYM%d", "entry_price": %d, "target_price": %d, "stop_loss": %d, "quantity": %d}`,
			i, 100+i, 112+i, 93+i, 1+i)
	}
	rows += `]`

	seq, err := json.Marshal(New().Evaluate([]byte(settingsDoc), tableDoc(rows)))
	require.NoError(t, err)
	par, err := json.Marshal(New(WithWorkers(8)).Evaluate([]byte(settingsDoc), tableDoc(rows)))
	require.NoError(t, err)
	assert.Equal(t, string(seq), string(par))
}

// JSON output carries explicit nulls for absent numerics, never NaN or Inf.
func TestEvaluateJSONNullDiscipline(t *testing.T) {
	res := New().Evaluate([]byte(settingsDoc),
		tableDoc(`[{"symbol": "X", "entry_price": 0, "target_price": 10, "stop_loss": 5}]`))

	b, err := json.Marshal(res)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"expected_return_pct":null`)
	assert.Contains(t, s, `"rr_ratio":null`)
	assert.NotContains(t, s, "NaN")
	assert.NotContains(t, s, "Inf")
}
