package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"aiwealth/internal/domain/models"
)

func rawRow(entry, target, stop float64) models.RawRow {
	return models.RawRow{
		Symbol:      "TCS",
		Direction:   "BUY",
		EntryPrice:  fp(entry),
		TargetPrice: fp(target),
		StopLoss:    fp(stop),
	}
}

// Scenario: plain price-derived metrics with no bucket hint. rr 2.0 against
// an unknown bucket lands on WATCH, and an unrecognized recommendation
// stays HOLD.
func TestEnrichRowUnknownBucketWatch(t *testing.T) {
	row := EnrichRow(rawRow(100, 110, 95), models.Settings{})

	require.NotNil(t, row.ExpectedReturnPct)
	require.NotNil(t, row.DownsidePct)
	require.NotNil(t, row.RRRatio)
	assert.InDelta(t, 10, *row.ExpectedReturnPct, 1e-9)
	assert.InDelta(t, 5, *row.DownsidePct, 1e-9)
	assert.InDelta(t, 2.0, *row.RRRatio, 1e-9)

	assert.Equal(t, BucketUnknown, row.RiskBucket)
	assert.Equal(t, "GREY", row.RiskBucketColorTag)
	assert.Equal(t, SafetyWatch, row.SafetyClass)
	assert.Equal(t, SuggestHold, row.AISuggestion)
}

// Scenario: target below entry. Negative expected return is a hard BLOCK
// and the suggestion must be REJECT whatever the upstream said.
func TestEnrichRowNegativeExpectedBlocks(t *testing.T) {
	raw := rawRow(100, 90, 95)
	raw.AIRecommendation = "BUY"
	row := EnrichRow(raw, models.Settings{})

	require.NotNil(t, row.ExpectedReturnPct)
	assert.InDelta(t, -10, *row.ExpectedReturnPct, 1e-9)
	assert.Equal(t, SafetyBlock, row.SafetyClass)
	assert.Equal(t, SuggestReject, row.AISuggestion)
}

// Scenario: a conservative bucket hint in the rationale, good rr and a
// tight stop reach SAFE.
func TestEnrichRowConservativeSafe(t *testing.T) {
	raw := rawRow(50, 55, 48)
	raw.AIReason = "Risk bucket: CONSERVATIVE. Steady accumulation."
	row := EnrichRow(raw, models.Settings{})

	require.NotNil(t, row.RRRatio)
	assert.InDelta(t, 10, *row.ExpectedReturnPct, 1e-9)
	assert.InDelta(t, 4, *row.DownsidePct, 1e-9)
	assert.InDelta(t, 2.5, *row.RRRatio, 1e-9)
	assert.Equal(t, BucketConservative, row.RiskBucket)
	assert.Equal(t, "GREEN", row.RiskBucketColorTag)
	assert.Equal(t, SafetySafe, row.SafetyClass)
}

func TestEnrichRowTextOverrideBeatsPrices(t *testing.T) {
	raw := rawRow(100, 110, 95) // prices say 10%
	raw.AIReason = "Expected return ≈ 4.5%."
	row := EnrichRow(raw, models.Settings{})

	require.NotNil(t, row.ExpectedReturnPct)
	assert.InDelta(t, 4.5, *row.ExpectedReturnPct, 1e-9)
	require.NotNil(t, row.RRRatio)
	assert.InDelta(t, 0.9, *row.RRRatio, 1e-9)
}

func TestEnrichRowZeroEntryNeverDivides(t *testing.T) {
	row := EnrichRow(rawRow(0, 110, 95), models.Settings{})

	assert.Nil(t, row.ExpectedReturnPct)
	assert.Nil(t, row.DownsidePct)
	assert.Nil(t, row.RRRatio)
	assert.Equal(t, SafetyBlock, row.SafetyClass)
	assert.Equal(t, SuggestReject, row.AISuggestion)
}

func TestEnrichRowStopAboveEntryBlocks(t *testing.T) {
	// Negative downside: defensive behavior, not a bug to fix.
	raw := rawRow(100, 110, 105)
	raw.Quantity = fp(10)
	row := EnrichRow(raw, models.Settings{})

	require.NotNil(t, row.DownsidePct)
	assert.InDelta(t, -5, *row.DownsidePct, 1e-9)
	assert.Nil(t, row.RRRatio)
	assert.Equal(t, SafetyBlock, row.SafetyClass)

	require.NotNil(t, row.CapitalAtRisk)
	assert.InDelta(t, -50, *row.CapitalAtRisk, 1e-9)
}

func TestEnrichRowCapital(t *testing.T) {
	raw := rawRow(100, 110, 95)
	raw.Quantity = fp(20)
	row := EnrichRow(raw, models.Settings{})

	require.NotNil(t, row.CapitalRequired)
	assert.InDelta(t, 2000, *row.CapitalRequired, 1e-9)
	require.NotNil(t, row.CapitalAtRisk)
	assert.InDelta(t, 100, *row.CapitalAtRisk, 1e-9)

	noQty := EnrichRow(rawRow(100, 110, 95), models.Settings{})
	assert.Nil(t, noQty.CapitalRequired)
	assert.Nil(t, noQty.CapitalAtRisk)
}

func TestEnrichRowRuleTraceShape(t *testing.T) {
	row := EnrichRow(rawRow(100, 110, 95), models.Settings{})
	require.Len(t, row.RuleTrace, 3)
	assert.Equal(t, "risk_bucket=UNKNOWN", row.RuleTrace[0])
	assert.Equal(t, "safety_class=WATCH", row.RuleTrace[1])
	assert.Equal(t, "rr_ratio=2.00", row.RuleTrace[2])

	blocked := EnrichRow(rawRow(0, 0, 0), models.Settings{})
	require.Len(t, blocked.RuleTrace, 3)
	assert.Equal(t, "rr_ratio=null", blocked.RuleTrace[2])
}

func TestEnrichRowReservedLimitsStayNull(t *testing.T) {
	row := EnrichRow(rawRow(100, 110, 95), models.Settings{})
	assert.Nil(t, row.WithinPerTradeLimit)
	assert.Nil(t, row.WithinDailyLossLimit)
}

func TestEnrichRowIdempotent(t *testing.T) {
	raw := rawRow(100, 110, 95)
	raw.AIReason = "Risk bucket: BALANCED. Expected return ≈ 6%."
	set := models.Settings{MaxDailyLossPct: fp(2)}
	assert.Equal(t, EnrichRow(raw, set), EnrichRow(raw, set))
}

func TestRowFromJSONAliases(t *testing.T) {
	doc := `{
		"ticker": "INFY",
		"side": "short",
		"qty": "25",
		"entry": 1500,
		"target": 1450,
		"stoploss_price": 1525,
		"confidence_score": 0.72,
		"recommendation": "SELL",
		"notes": "Risk bucket: BALANCED.",
		"profile_id": "BALANCED_SIM",
		"show_for_manual_approval": "no"
	}`
	r := RowFromJSON(gjson.Parse(doc))

	assert.Equal(t, "INFY", r.Symbol)
	assert.Equal(t, "SELL", r.Direction)
	require.NotNil(t, r.Quantity)
	assert.Equal(t, 25.0, *r.Quantity)
	require.NotNil(t, r.EntryPrice)
	assert.Equal(t, 1500.0, *r.EntryPrice)
	require.NotNil(t, r.StopLoss)
	assert.Equal(t, 1525.0, *r.StopLoss)
	require.NotNil(t, r.Confidence)
	assert.Equal(t, 0.72, *r.Confidence)
	assert.Equal(t, "SELL", r.AIRecommendation)
	assert.Equal(t, "Risk bucket: BALANCED.", r.AIReason)
	assert.Equal(t, "BALANCED_SIM", r.Profile)
	assert.False(t, r.ShowForManualApproval)
}

func TestRowFromJSONDefaults(t *testing.T) {
	r := RowFromJSON(gjson.Parse(`{"symbol": "SBIN"}`))
	assert.Equal(t, "BUY", r.Direction)
	assert.True(t, r.ShowForManualApproval)
	assert.Nil(t, r.EntryPrice)
	assert.Nil(t, r.Quantity)
}
