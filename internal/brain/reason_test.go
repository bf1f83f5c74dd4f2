package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskBucketFromReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{"plain", "Risk bucket: BALANCED. Momentum intact.", BucketBalanced},
		{"lowercase label", "risk bucket: conservative", BucketConservative},
		{"underscore bucket", "Risk bucket: ULTRA_AGGRESSIVE", BucketUltraAggressive},
		{"mid sentence", "Strong setup. Risk bucket: AGGRESSIVE, tight stop.", BucketAggressive},
		{"unlisted bucket collapses to unknown", "Risk bucket: WILD", BucketUnknown},
		{"absent", "No structured hints at all.", BucketUnknown},
		{"empty", "", BucketUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskBucketFromReason(tt.reason))
		})
	}
}

func TestExpectedReturnFromReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   *float64
	}{
		{"approx symbol", "Expected return ≈ 4.5%", fp(4.5)},
		{"tilde", "Expected return ~ 12%", fp(12)},
		{"equals", "expected return = 3.25 %", fp(3.25)},
		{"colon", "Expected return: 7%", fp(7)},
		{"negative", "Expected return ≈ -2.5%", fp(-2.5)},
		{"embedded", "Risk bucket: BALANCED. Expected return ≈ 4.5%. Conf 80.", fp(4.5)},
		{"no percent sign", "Expected return ≈ 4.5", nil},
		{"absent", "nothing here", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedReturnFromReason(tt.reason)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}
