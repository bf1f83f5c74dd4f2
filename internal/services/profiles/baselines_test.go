package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwealth/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestComputeBaselines(t *testing.T) {
	rows := []models.EnrichedRow{
		{Profile: "CONSERVATIVE", SafetyClass: "SAFE", ExpectedReturnPct: f(4), RRRatio: f(2), CapitalRequired: f(1000), CapitalAtRisk: f(50)},
		{Profile: "CONSERVATIVE", SafetyClass: "BLOCK", ExpectedReturnPct: f(-2), CapitalRequired: f(500)},
		{Profile: "AGGRESSIVE", SafetyClass: "WATCH"},
		{Profile: "", SafetyClass: "SAFE", ExpectedReturnPct: f(6)},
	}
	brokerMap := map[string]string{"CONSERVATIVE": "zerodha"}

	out := ComputeBaselines(rows, brokerMap)
	require.Len(t, out, 3)

	// Sorted by profile name.
	assert.Equal(t, "AGGRESSIVE", out[0].Profile)
	assert.Equal(t, "CONSERVATIVE", out[1].Profile)
	assert.Equal(t, "UNMAPPED", out[2].Profile)

	cons := out[1]
	assert.Equal(t, "zerodha", cons.Broker)
	assert.Equal(t, 2, cons.RowCount)
	assert.Equal(t, 1, cons.SafeCount)
	assert.Equal(t, 1, cons.BlockCount)
	require.NotNil(t, cons.AvgExpectedPct)
	assert.InDelta(t, 1.0, *cons.AvgExpectedPct, 1e-9)
	// Only one row carries an rr_ratio; the null row must not drag the average.
	require.NotNil(t, cons.AvgRRRatio)
	assert.InDelta(t, 2.0, *cons.AvgRRRatio, 1e-9)
	assert.InDelta(t, 1500, cons.CapitalRequired, 1e-9)
	assert.InDelta(t, 50, cons.EstimatedLossSLHit, 1e-9)

	// All metrics null for this profile: averages stay null.
	agg := out[0]
	assert.Nil(t, agg.AvgExpectedPct)
	assert.Nil(t, agg.AvgRRRatio)
	assert.Zero(t, agg.CapitalRequired)

	unmapped := out[2]
	assert.Equal(t, "", unmapped.Broker)
	require.NotNil(t, unmapped.AvgExpectedPct)
	assert.InDelta(t, 6.0, *unmapped.AvgExpectedPct, 1e-9)
}

func TestComputeBaselinesEmpty(t *testing.T) {
	out := ComputeBaselines(nil, nil)
	assert.Empty(t, out)
}
