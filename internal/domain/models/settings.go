package models

// Settings is the numeric/string settings payload the brain computes with.
// Every field is optional; absent fields stay null in the audit snapshot so
// a reader can tell "not configured" from "configured to zero".
type Settings struct {
	CreamyLayerSize                 *float64 `json:"creamy_layer_size"`
	MaxDailyLossPct                 *float64 `json:"max_daily_loss_pct"`
	MaxPerTradeCapitalPct           *float64 `json:"max_per_trade_capital_pct"`
	AutoApproveThresholdExpectedPct *float64 `json:"auto_approve_threshold_expected_pct"`
	AutoApproveMinConfidence        *float64 `json:"auto_approve_min_confidence"`
	EnvironmentMode                 *string  `json:"environment_mode"`
	BaseCurrency                    *string  `json:"base_currency"`
}
