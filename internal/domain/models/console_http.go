package models

import "encoding/json"

// Requests for console HTTP endpoints. Defined in domain for consistency and reuse.

type CoreBusinessRequest struct {
	Settings json.RawMessage `json:"settings"`
	Table    json.RawMessage `json:"table" validate:"required"`
	View     string          `json:"view" default:"ALL" validate:"oneof=ALL MANUAL BLOCKED"`
}

type TableRequest struct {
	Env      string `query:"env" json:"env" default:"SIM" validate:"oneof=SIM PROD"`
	ViewMode string `query:"view" json:"view" default:"ALL" validate:"oneof=ALL MANUAL BLOCKED"`
}

type RunlogRequest struct {
	RunDate string `query:"run_date" json:"run_date" validate:"omitempty,datetime=2006-01-02"`
	Env     string `query:"env" json:"env" default:"SIM" validate:"oneof=SIM PROD"`
	Limit   int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type SettingsUpdateRequest struct {
	CreamyLayerSize                 *float64 `json:"creamy_layer_size" validate:"omitempty,gte=1,lte=1000"`
	MaxDailyLossPct                 *float64 `json:"max_daily_loss_pct" validate:"omitempty,gt=0,lte=100"`
	MaxPerTradeCapitalPct           *float64 `json:"max_per_trade_capital_pct" validate:"omitempty,gt=0,lte=100"`
	AutoApproveThresholdExpectedPct *float64 `json:"auto_approve_threshold_expected_pct" validate:"omitempty,gte=0,lte=1000"`
	AutoApproveMinConfidence        *float64 `json:"auto_approve_min_confidence" validate:"omitempty,gte=0,lte=100"`
	EnvironmentMode                 *string  `json:"environment_mode" validate:"omitempty,oneof=SIM PROD"`
	BaseCurrency                    *string  `json:"base_currency" validate:"omitempty,len=3"`
}

type ReplayRequest struct {
	RunDate string `query:"run_date" json:"run_date" validate:"omitempty,datetime=2006-01-02"`
	Env     string `query:"env" json:"env" default:"SIM" validate:"oneof=SIM PROD"`
}
