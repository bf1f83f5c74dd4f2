package brain

import "aiwealth/internal/domain/models"

// Summarize reduces all enriched rows into run-level counts and totals in a
// single pass. Null capital values are skipped. Negative capital_at_risk is
// summed as-is, so a stop above entry nets against the aggregate.
func Summarize(rows []models.EnrichedRow, meta models.TableMeta) models.RunSummary {
	s := models.RunSummary{
		TotalUniverse:    meta.TotalUniverse,
		TotalCandidates:  meta.TotalCandidates,
		CreamyLayerCount: meta.CreamyLayerCount,
		SafetyClassCounts: map[string]int{
			SafetySafe:    0,
			SafetyWatch:   0,
			SafetyBlock:   0,
			BucketUnknown: 0,
		},
		SuggestionCounts: map[string]int{
			// APPROVE is reserved for the auto-approval stage.
			"APPROVE":     0,
			SuggestHold:   0,
			SuggestReject: 0,
			SuggestBuy:    0,
			SuggestSell:   0,
			SuggestExit:   0,
		},
	}

	for _, r := range rows {
		switch r.SafetyClass {
		case SafetySafe, SafetyWatch, SafetyBlock:
			s.SafetyClassCounts[r.SafetyClass]++
		default:
			// Defensive bucket for classes this version does not know.
			s.SafetyClassCounts[BucketUnknown]++
		}

		if _, ok := s.SuggestionCounts[r.AISuggestion]; ok {
			s.SuggestionCounts[r.AISuggestion]++
		}

		if r.ShowForManualApproval {
			s.ManualApprovalCount++
		}
		if r.SafetyClass == SafetyBlock {
			s.BlockedByRiskCount++
		}
		if r.CapitalRequired != nil {
			s.TotalCapitalIfAllApproved += *r.CapitalRequired
		}
		if r.CapitalAtRisk != nil {
			s.EstimatedDailyLossIfAllSLHit += *r.CapitalAtRisk
		}
	}

	return s
}
