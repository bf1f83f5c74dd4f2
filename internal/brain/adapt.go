package brain

import (
	"strings"

	"github.com/tidwall/gjson"

	"aiwealth/internal/domain/models"
)

// The input adapter is the only place that knows about upstream field
// aliases. Everything after it works against the canonical RawRow.

func firstField(row gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := row.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// RowFromJSON maps one raw report row onto the canonical shape.
func RowFromJSON(row gjson.Result) models.RawRow {
	r := models.RawRow{
		Symbol:   StringOrEmpty(firstField(row, "symbol", "ticker", "tradingsymbol")),
		Segment:  StringOrEmpty(firstField(row, "segment", "segment_code")),
		Exchange: StringOrEmpty(firstField(row, "exchange", "exchange_code")),
		Profile:  StringOrEmpty(firstField(row, "profile", "profile_id")),
		Broker:   StringOrEmpty(row.Get("broker")),

		Quantity:    NumberOrNull(firstField(row, "quantity", "qty")),
		EntryPrice:  NumberOrNull(firstField(row, "entry_price", "entry")),
		TargetPrice: NumberOrNull(firstField(row, "target_price", "target")),
		StopLoss:    NumberOrNull(firstField(row, "stop_loss", "stoploss_price", "sl")),
		Confidence:  NumberOrNull(firstField(row, "confidence", "confidence_score")),

		RiskBucket:       StringOrEmpty(row.Get("risk_bucket")),
		AIRecommendation: StringOrEmpty(firstField(row, "ai_recommendation", "recommendation", "ai_action")),
		AIReason:         StringOrEmpty(firstField(row, "ai_reason", "reason", "notes")),

		ShowForManualApproval: BoolOrDefault(row.Get("show_for_manual_approval"), true),
	}
	r.Direction = normalizeDirection(StringOrEmpty(firstField(row, "direction", "side")))
	return r
}

// normalizeDirection folds the usual spellings onto BUY/SELL/EXIT, with BUY
// as the default for anything unrecognized.
func normalizeDirection(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELL", "SHORT":
		return "SELL"
	case "EXIT", "CLOSE", "FLAT":
		return "EXIT"
	default:
		return "BUY"
	}
}

// settingsFromJSON extracts the settings snapshot. Absent fields stay null.
func settingsFromJSON(v gjson.Result) models.Settings {
	return models.Settings{
		CreamyLayerSize:                 NumberOrNull(v.Get("creamy_layer_size")),
		MaxDailyLossPct:                 NumberOrNull(v.Get("max_daily_loss_pct")),
		MaxPerTradeCapitalPct:           NumberOrNull(v.Get("max_per_trade_capital_pct")),
		AutoApproveThresholdExpectedPct: NumberOrNull(v.Get("auto_approve_threshold_expected_pct")),
		AutoApproveMinConfidence:        NumberOrNull(v.Get("auto_approve_min_confidence")),
		EnvironmentMode:                 stringOrNull(v.Get("environment_mode")),
		BaseCurrency:                    stringOrNull(v.Get("base_currency")),
	}
}

// metaFromJSON extracts the caller-supplied run metadata.
func metaFromJSON(v gjson.Result) models.TableMeta {
	m := models.TableMeta{
		RunDate:          StringOrEmpty(v.Get("run_date")),
		Env:              StringOrEmpty(v.Get("env")),
		TotalUniverse:    IntOrNull(v.Get("total_universe")),
		TotalCandidates:  IntOrNull(v.Get("total_candidates")),
		CreamyLayerCount: IntOrNull(v.Get("creamy_layer_count")),
	}
	if profiles := v.Get("profiles"); profiles.IsArray() {
		for _, p := range profiles.Array() {
			if s := StringOrEmpty(p); s != "" {
				m.Profiles = append(m.Profiles, s)
			}
		}
	}
	if pbm := v.Get("profile_broker_map"); pbm.IsObject() {
		m.ProfileBrokerMap = make(map[string]string)
		pbm.ForEach(func(key, val gjson.Result) bool {
			m.ProfileBrokerMap[key.String()] = StringOrEmpty(val)
			return true
		})
	}
	return m
}

func stringOrNull(v gjson.Result) *string {
	s := StringOrEmpty(v)
	if s == "" {
		return nil
	}
	return &s
}
