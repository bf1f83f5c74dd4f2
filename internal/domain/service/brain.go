package service

import "aiwealth/internal/domain/models"

// Enricher evaluates a raw control-run payload against a settings payload
// and produces the enriched result. Implementations must be pure: same
// inputs, same output, no clock and no I/O.
type Enricher interface {
	Evaluate(settingsPayload, tablePayload []byte) *models.Result
	EvaluateView(settingsPayload, tablePayload []byte, viewMode string) *models.Result
}
