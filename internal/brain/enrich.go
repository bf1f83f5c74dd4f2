package brain

import (
	"fmt"
	"strings"

	"aiwealth/internal/domain/models"
)

// EnrichRow composes normalization, parsing, metric derivation and
// classification for one row. It is a pure function of the row and the
// settings: no row may ever depend on another row, so callers are free to
// enrich in any order or in parallel.
func EnrichRow(raw models.RawRow, set models.Settings) models.EnrichedRow {
	bucket := normalizeBucket(raw.RiskBucket)
	if bucket == BucketUnknown {
		bucket = RiskBucketFromReason(raw.AIReason)
	}

	m := deriveMetrics(raw, ExpectedReturnFromReason(raw.AIReason))

	class := SafetyClass(m.ExpectedReturnPct, m.DownsidePct, bucket, m.RRRatio)
	suggestion := Suggestion(class, raw.AIRecommendation)

	return models.EnrichedRow{
		Symbol:    raw.Symbol,
		Segment:   raw.Segment,
		Exchange:  raw.Exchange,
		Profile:   raw.Profile,
		Broker:    raw.Broker,
		Direction: raw.Direction,

		Quantity:    raw.Quantity,
		EntryPrice:  raw.EntryPrice,
		TargetPrice: raw.TargetPrice,
		StopLoss:    raw.StopLoss,

		ExpectedReturnPct: m.ExpectedReturnPct,
		DownsidePct:       m.DownsidePct,
		RRRatio:           m.RRRatio,

		RiskBucket:         bucket,
		RiskBucketColorTag: BucketColorTag(bucket),
		ConfidencePct:      NormalizeConfidence(raw.Confidence),

		CapitalRequired: m.CapitalRequired,
		CapitalAtRisk:   m.CapitalAtRisk,

		SafetyClass:   class,
		AISuggestion:  suggestion,
		AIReason:      raw.AIReason,
		AIReasonShort: shortReason(raw, m, bucket, class),
		RuleTrace:     ruleTrace(bucket, class, m.RRRatio),

		ShowForManualApproval: raw.ShowForManualApproval,

		// Populated by the portfolio-level stage, never here.
		WithinPerTradeLimit:  nil,
		WithinDailyLossLimit: nil,
	}
}

// ruleTrace always carries exactly the bucket, safety class and rr ratio
// entries, in that order. Approval gates downstream key off this shape.
func ruleTrace(bucket, class string, rr *float64) []string {
	rrText := "null"
	if rr != nil {
		rrText = fmt.Sprintf("%.2f", *rr)
	}
	return []string{
		"risk_bucket=" + bucket,
		"safety_class=" + class,
		"rr_ratio=" + rrText,
	}
}

// shortReason builds the compact human-readable summary. Each segment is
// included only when its source value is present.
func shortReason(raw models.RawRow, m rowMetrics, bucket, class string) string {
	parts := make([]string, 0, 6)
	if raw.Symbol != "" {
		parts = append(parts, raw.Symbol)
	}
	if raw.Direction != "" {
		parts = append(parts, raw.Direction)
	}
	if m.ExpectedReturnPct != nil {
		parts = append(parts, fmt.Sprintf("exp %.2f%%", *m.ExpectedReturnPct))
	}
	if m.RRRatio != nil {
		parts = append(parts, fmt.Sprintf("rr %.2f", *m.RRRatio))
	}
	if bucket != BucketUnknown {
		parts = append(parts, bucket)
	}
	parts = append(parts, class)
	return strings.Join(parts, " | ")
}
