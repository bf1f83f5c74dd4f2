package profiles

import (
	"sort"

	"aiwealth/internal/domain/models"
)

// Baseline summarizes the risk posture of one profile across a run.
type Baseline struct {
	Profile           string   `json:"profile"`
	Broker            string   `json:"broker"`
	RowCount          int      `json:"row_count"`
	SafeCount         int      `json:"safe_count"`
	BlockCount        int      `json:"block_count"`
	AvgExpectedPct    *float64 `json:"avg_expected_pct"`
	AvgRRRatio        *float64 `json:"avg_rr_ratio"`
	CapitalRequired   float64  `json:"capital_required"`
	EstimatedLossSLHit float64 `json:"estimated_loss_sl_hit"`
}

// ComputeBaselines folds enriched rows into per-profile baselines. Rows with
// an empty profile land under "UNMAPPED"; null metrics are skipped from the
// averages, not treated as zero.
func ComputeBaselines(rows []models.EnrichedRow, brokerMap map[string]string) []Baseline {
	type acc struct {
		b        Baseline
		expSum   float64
		expCount int
		rrSum    float64
		rrCount  int
	}
	byProfile := make(map[string]*acc)

	for _, r := range rows {
		name := r.Profile
		if name == "" {
			name = "UNMAPPED"
		}
		a, ok := byProfile[name]
		if !ok {
			a = &acc{b: Baseline{Profile: name, Broker: brokerMap[name]}}
			byProfile[name] = a
		}
		a.b.RowCount++
		switch r.SafetyClass {
		case "SAFE":
			a.b.SafeCount++
		case "BLOCK":
			a.b.BlockCount++
		}
		if r.ExpectedReturnPct != nil {
			a.expSum += *r.ExpectedReturnPct
			a.expCount++
		}
		if r.RRRatio != nil {
			a.rrSum += *r.RRRatio
			a.rrCount++
		}
		if r.CapitalRequired != nil {
			a.b.CapitalRequired += *r.CapitalRequired
		}
		if r.CapitalAtRisk != nil {
			a.b.EstimatedLossSLHit += *r.CapitalAtRisk
		}
	}

	out := make([]Baseline, 0, len(byProfile))
	for _, a := range byProfile {
		if a.expCount > 0 {
			v := a.expSum / float64(a.expCount)
			a.b.AvgExpectedPct = &v
		}
		if a.rrCount > 0 {
			v := a.rrSum / float64(a.rrCount)
			a.b.AvgRRRatio = &v
		}
		out = append(out, a.b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out
}
