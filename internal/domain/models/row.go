package models

// RawRow is the canonical shape of one candidate trade after the input
// adapter has mapped field aliases (stoploss_price, qty, ticker, ...) onto
// it. All numeric fields are nullable: upstream reports routinely omit them
// or carry non-numeric strings.
type RawRow struct {
	Symbol   string
	Segment  string // EQ, F&O, ETF, MF, INDEX, SME, ...
	Exchange string // NSE, BSE, ...
	Profile  string
	Broker   string

	Direction string // "BUY", "SELL", "EXIT"

	Quantity    *float64
	EntryPrice  *float64
	TargetPrice *float64
	StopLoss    *float64
	Confidence  *float64 // as received: 0..1 fraction or 0..100 percent

	RiskBucket       string // explicit bucket if the report carries one
	AIRecommendation string
	AIReason         string

	ShowForManualApproval bool
}

// EnrichedRow is a RawRow plus everything the brain derives from it.
// Nullable numbers marshal as explicit JSON null; NaN and Inf never appear.
type EnrichedRow struct {
	Symbol    string `json:"symbol"`
	Segment   string `json:"segment"`
	Exchange  string `json:"exchange"`
	Profile   string `json:"profile"`
	Broker    string `json:"broker"`
	Direction string `json:"direction"`

	Quantity    *float64 `json:"quantity"`
	EntryPrice  *float64 `json:"entry_price"`
	TargetPrice *float64 `json:"target_price"`
	StopLoss    *float64 `json:"stop_loss"`

	ExpectedReturnPct *float64 `json:"expected_return_pct"`
	DownsidePct       *float64 `json:"downside_pct"`
	RRRatio           *float64 `json:"rr_ratio"`

	RiskBucket         string   `json:"risk_bucket"`           // CONSERVATIVE | BALANCED | AGGRESSIVE | ULTRA_AGGRESSIVE | UNKNOWN
	RiskBucketColorTag string   `json:"risk_bucket_color_tag"` // GREEN | BLUE | ORANGE | RED | GREY
	ConfidencePct      *float64 `json:"confidence_pct"`        // always 0..100

	CapitalRequired *float64 `json:"capital_required"`
	CapitalAtRisk   *float64 `json:"capital_at_risk"`

	SafetyClass   string   `json:"safety_class"`  // SAFE | WATCH | BLOCK
	AISuggestion  string   `json:"ai_suggestion"` // BUY | SELL | EXIT | HOLD | REJECT
	AIReason      string   `json:"ai_reason"`
	AIReasonShort string   `json:"ai_reason_short"`
	RuleTrace     []string `json:"rule_trace"`

	ShowForManualApproval bool `json:"show_for_manual_approval"`

	// Reserved for the portfolio-level stage; the brain always leaves them null.
	WithinPerTradeLimit  *bool `json:"within_per_trade_limit"`
	WithinDailyLossLimit *bool `json:"within_daily_loss_limit"`
}
