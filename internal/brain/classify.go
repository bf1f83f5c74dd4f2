package brain

import "strings"

// Risk buckets.
const (
	BucketConservative    = "CONSERVATIVE"
	BucketBalanced        = "BALANCED"
	BucketAggressive      = "AGGRESSIVE"
	BucketUltraAggressive = "ULTRA_AGGRESSIVE"
	BucketUnknown         = "UNKNOWN"
)

// Safety classes.
const (
	SafetySafe  = "SAFE"
	SafetyWatch = "WATCH"
	SafetyBlock = "BLOCK"
)

// Suggestions.
const (
	SuggestBuy    = "BUY"
	SuggestSell   = "SELL"
	SuggestExit   = "EXIT"
	SuggestHold   = "HOLD"
	SuggestReject = "REJECT"
)

// SafetyClass is the risk decision table. Rules are evaluated in fixed
// order, first match wins, and every input combination yields exactly one
// class with BLOCK as the fail-safe default. A null rr ratio counts as 0.
func SafetyClass(expectedPct, downsidePct *float64, bucket string, rrRatio *float64) string {
	if expectedPct == nil || downsidePct == nil || *downsidePct <= 0 {
		return SafetyBlock
	}
	if *expectedPct <= 0 {
		return SafetyBlock
	}

	rr := 0.0
	if rrRatio != nil {
		rr = *rrRatio
	}
	down := *downsidePct

	switch bucket {
	case BucketConservative:
		if rr >= 1.2 && down <= 5 {
			return SafetySafe
		}
		return SafetyWatch
	case BucketBalanced:
		if rr >= 1.5 && down <= 8 {
			return SafetySafe
		}
		if rr >= 1.0 {
			return SafetyWatch
		}
		return SafetyBlock
	case BucketAggressive, BucketUltraAggressive:
		// Aggressive buckets top out at WATCH, never SAFE.
		if rr >= 2.0 && down <= 12 {
			return SafetyWatch
		}
		return SafetyBlock
	default:
		if rr >= 1.5 && down <= 8 {
			return SafetyWatch
		}
		return SafetyBlock
	}
}

// BucketColorTag is presentation metadata only; it has no decision impact.
func BucketColorTag(bucket string) string {
	switch bucket {
	case BucketConservative:
		return "GREEN"
	case BucketBalanced:
		return "BLUE"
	case BucketAggressive:
		return "ORANGE"
	case BucketUltraAggressive:
		return "RED"
	default:
		return "GREY"
	}
}

// Suggestion derives the AI action. BLOCK always forces REJECT; otherwise a
// recognized upstream action (BUY/SELL/EXIT, case-insensitive) passes
// through and everything else defaults to HOLD. The safety class gates
// eligibility, it does not itself issue an action.
func Suggestion(safetyClass, rawRecommendation string) string {
	if safetyClass == SafetyBlock {
		return SuggestReject
	}
	switch strings.ToUpper(strings.TrimSpace(rawRecommendation)) {
	case SuggestBuy:
		return SuggestBuy
	case SuggestSell:
		return SuggestSell
	case SuggestExit:
		return SuggestExit
	default:
		return SuggestHold
	}
}
