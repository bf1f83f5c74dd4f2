package brain

import "aiwealth/internal/domain/models"

// rowMetrics holds the derived numbers for one row.
type rowMetrics struct {
	ExpectedReturnPct *float64
	DownsidePct       *float64
	RRRatio           *float64
	CapitalRequired   *float64
	CapitalAtRisk     *float64
}

// deriveMetrics computes per-row metrics. A text-parsed expected return
// takes precedence over the price-derived one. Downside is deliberately not
// absolute-valued: a stop above entry goes negative, which nulls the rr
// ratio and routes the row to a conservative classification downstream.
func deriveMetrics(r models.RawRow, textExpected *float64) rowMetrics {
	var m rowMetrics

	if textExpected != nil {
		m.ExpectedReturnPct = ClampPercent(textExpected)
	} else if r.EntryPrice != nil && *r.EntryPrice != 0 && r.TargetPrice != nil {
		v := (*r.TargetPrice - *r.EntryPrice) / *r.EntryPrice * 100
		m.ExpectedReturnPct = ClampPercent(&v)
	}

	if r.EntryPrice != nil && *r.EntryPrice != 0 && r.StopLoss != nil {
		v := (*r.EntryPrice - *r.StopLoss) / *r.EntryPrice * 100
		m.DownsidePct = ClampPercent(&v)
	}

	// Never divide unless downside is a positive finite number.
	if m.ExpectedReturnPct != nil && m.DownsidePct != nil && *m.DownsidePct > 0 {
		m.RRRatio = finiteOrNull(*m.ExpectedReturnPct / *m.DownsidePct)
	}

	if r.EntryPrice != nil && r.Quantity != nil {
		m.CapitalRequired = finiteOrNull(*r.EntryPrice * *r.Quantity)
	}

	// Can go negative when the stop sits above entry; summary aggregation
	// sums it as-is.
	if r.EntryPrice != nil && r.StopLoss != nil && r.Quantity != nil {
		m.CapitalAtRisk = finiteOrNull((*r.EntryPrice - *r.StopLoss) * *r.Quantity)
	}

	return m
}
