package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestSafetyClassDecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		expected *float64
		downside *float64
		bucket   string
		rr       *float64
		want     string
	}{
		{"null expected blocks", nil, fp(5), BucketConservative, fp(2), SafetyBlock},
		{"null downside blocks", fp(10), nil, BucketConservative, fp(2), SafetyBlock},
		{"zero downside blocks", fp(10), fp(0), BucketConservative, fp(2), SafetyBlock},
		{"negative downside blocks", fp(10), fp(-3), BucketBalanced, fp(2), SafetyBlock},
		{"zero expected blocks", fp(0), fp(5), BucketConservative, fp(2), SafetyBlock},
		{"negative expected blocks", fp(-10), fp(5), BucketBalanced, fp(2), SafetyBlock},

		{"conservative safe", fp(6), fp(5), BucketConservative, fp(1.2), SafetySafe},
		{"conservative wide stop watches", fp(6), fp(5.5), BucketConservative, fp(1.2), SafetyWatch},
		{"conservative low rr watches", fp(6), fp(5), BucketConservative, fp(1.1), SafetyWatch},
		{"conservative never blocks on positive inputs", fp(0.1), fp(4.9), BucketConservative, nil, SafetyWatch},

		{"balanced safe", fp(12), fp(8), BucketBalanced, fp(1.5), SafetySafe},
		{"balanced mid rr watches", fp(9), fp(9), BucketBalanced, fp(1.0), SafetyWatch},
		{"balanced low rr blocks", fp(5), fp(6), BucketBalanced, fp(0.9), SafetyBlock},
		{"balanced null rr blocks", fp(5), fp(6), BucketBalanced, nil, SafetyBlock},

		{"aggressive caps at watch", fp(24), fp(12), BucketAggressive, fp(2.0), SafetyWatch},
		{"aggressive wide stop blocks", fp(26), fp(13), BucketAggressive, fp(2.0), SafetyBlock},
		{"aggressive low rr blocks", fp(20), fp(11), BucketAggressive, fp(1.9), SafetyBlock},
		{"ultra aggressive caps at watch", fp(24), fp(12), BucketUltraAggressive, fp(2.0), SafetyWatch},
		{"ultra aggressive blocks", fp(10), fp(10), BucketUltraAggressive, fp(1.0), SafetyBlock},

		{"unknown bucket watches", fp(12), fp(8), BucketUnknown, fp(1.5), SafetyWatch},
		{"unknown bucket blocks", fp(10), fp(8), BucketUnknown, fp(1.25), SafetyBlock},
		{"unexpected bucket falls through to default", fp(12), fp(8), "WILD", fp(1.5), SafetyWatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafetyClass(tt.expected, tt.downside, tt.bucket, tt.rr))
		})
	}
}

// The decision table must be total: every combination of the coarse input
// classes yields exactly one of the three safety classes.
func TestSafetyClassTotality(t *testing.T) {
	expecteds := []*float64{nil, fp(-5), fp(0), fp(7)}
	downsides := []*float64{nil, fp(-2), fp(0), fp(4), fp(9), fp(13)}
	rrs := []*float64{nil, fp(0), fp(1.0), fp(1.3), fp(1.6), fp(2.5)}
	buckets := []string{
		BucketConservative, BucketBalanced, BucketAggressive,
		BucketUltraAggressive, BucketUnknown, "SOMETHING_ELSE",
	}

	for _, e := range expecteds {
		for _, d := range downsides {
			for _, rr := range rrs {
				for _, b := range buckets {
					got := SafetyClass(e, d, b, rr)
					assert.Contains(t, []string{SafetySafe, SafetyWatch, SafetyBlock}, got)
				}
			}
		}
	}
}

func TestBucketColorTag(t *testing.T) {
	assert.Equal(t, "GREEN", BucketColorTag(BucketConservative))
	assert.Equal(t, "BLUE", BucketColorTag(BucketBalanced))
	assert.Equal(t, "ORANGE", BucketColorTag(BucketAggressive))
	assert.Equal(t, "RED", BucketColorTag(BucketUltraAggressive))
	assert.Equal(t, "GREY", BucketColorTag(BucketUnknown))
	assert.Equal(t, "GREY", BucketColorTag("whatever"))
}

func TestSuggestion(t *testing.T) {
	// BLOCK forces REJECT regardless of the raw recommendation.
	assert.Equal(t, SuggestReject, Suggestion(SafetyBlock, "BUY"))
	assert.Equal(t, SuggestReject, Suggestion(SafetyBlock, ""))

	// Recognized actions pass through case-insensitively.
	assert.Equal(t, SuggestBuy, Suggestion(SafetySafe, "buy"))
	assert.Equal(t, SuggestSell, Suggestion(SafetyWatch, " Sell "))
	assert.Equal(t, SuggestExit, Suggestion(SafetySafe, "EXIT"))

	// Anything else defaults to HOLD, not to an approved action.
	assert.Equal(t, SuggestHold, Suggestion(SafetyWatch, "STRONG BUY"))
	assert.Equal(t, SuggestHold, Suggestion(SafetySafe, ""))
}
