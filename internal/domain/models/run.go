package models

import "time"

// TableMeta is the caller-supplied metadata attached to a control-run table.
// Counts are nullable pass-throughs: the brain itself does not know the size
// of the instrument universe.
type TableMeta struct {
	RunDate          string
	Env              string
	Profiles         []string
	ProfileBrokerMap map[string]string
	TotalUniverse    *int
	TotalCandidates  *int
	CreamyLayerCount *int
}

// RunSummary reduces all enriched rows of one run into run-level counts and
// totals.
type RunSummary struct {
	TotalUniverse    *int `json:"total_universe"`
	TotalCandidates  *int `json:"total_candidates"`
	CreamyLayerCount *int `json:"creamy_layer_count"`

	ManualApprovalCount int `json:"manual_approval_count"`
	BlockedByRiskCount  int `json:"blocked_by_risk_count"`

	// Fixed key sets: SAFE/WATCH/BLOCK/UNKNOWN and
	// APPROVE/HOLD/REJECT/BUY/SELL/EXIT. APPROVE stays zero until the
	// auto-approval stage lands.
	SafetyClassCounts map[string]int `json:"safety_class_counts"`
	SuggestionCounts  map[string]int `json:"suggestion_counts"`

	TotalCapitalIfAllApproved    float64 `json:"total_capital_if_all_approved"`
	EstimatedDailyLossIfAllSLHit float64 `json:"estimated_daily_loss_if_all_sl_hit"`
}

// RunMeta describes one brain invocation: where the table came from, which
// settings were in force, and the derived run mode.
type RunMeta struct {
	RunDate          string            `json:"run_date"`
	Env              string            `json:"env"`
	Profiles         []string          `json:"profiles"`
	ProfileBrokerMap map[string]string `json:"profile_broker_map"`
	ViewMode         string            `json:"view_mode"`
	BrainVersion     string            `json:"brain_version"`
	PolicyVersion    string            `json:"policy_version"`
	Mode             string            `json:"mode"` // NORMAL | SAFE_GUARD | DEGRADED
	SettingsUsed     Settings          `json:"settings_used"`
}

// Result is the complete output of one brain invocation. It is always
// structurally valid, even for malformed input: anomalies surface in
// Warnings and Errors, never as a Go error.
type Result struct {
	Rows     []EnrichedRow `json:"rows"`
	Meta     RunMeta       `json:"meta"`
	Summary  RunSummary    `json:"summary"`
	Warnings []string      `json:"warnings"`
	Errors   []string      `json:"errors"`
}

// RunLogEntry is the persisted audit record of one control-run evaluation.
type RunLogEntry struct {
	RunDate       string    `json:"run_date"`
	Env           string    `json:"env"`
	Mode          string    `json:"mode"`
	RowCount      int       `json:"row_count"`
	SafeCount     int       `json:"safe_count"`
	WatchCount    int       `json:"watch_count"`
	BlockCount    int       `json:"block_count"`
	ManualCount   int       `json:"manual_count"`
	TotalCapital  float64   `json:"total_capital"`
	EstimatedLoss float64   `json:"estimated_loss"`
	BrainVersion  string    `json:"brain_version"`
	CreatedAt     time.Time `json:"created_at"`
}
