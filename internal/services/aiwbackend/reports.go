package aiwbackend

import (
	"context"
	"encoding/json"
	"fmt"

	"aiwealth/internal/domain/models"
	domsvc "aiwealth/internal/domain/service"
	"aiwealth/pkg/config"
)

// HTTPReportFetcher pulls control-run reports from the backend REST API.
type HTTPReportFetcher struct{ base *HTTPServiceBase }

func NewHTTPReportFetcher(cfg *config.Config) *HTTPReportFetcher {
	return &HTTPReportFetcher{base: NewHTTPServiceBase(cfg)}
}

type controlRunResponse struct {
	RunDate  string          `json:"run_date"`
	Env      string          `json:"env"`
	Received int64           `json:"received"` // ms
	Payload  json.RawMessage `json:"payload"`
}

// FetchControlRun fetches the control-run report for a run date. An empty
// runDate asks the backend for its latest run.
func (f *HTTPReportFetcher) FetchControlRun(ctx context.Context, env, runDate string) (*models.Report, error) {
	query := map[string][]string{"env": {env}}
	if runDate != "" {
		query["run_date"] = []string{runDate}
	}
	var rr controlRunResponse
	if err := f.base.GetJSONWithRetry(ctx, "/api/aiwealth/control/run", query, &rr, 3); err != nil {
		return nil, fmt.Errorf("fetch control run: %w", err)
	}
	if len(rr.Payload) == 0 {
		return nil, fmt.Errorf("control run %s/%s has no payload", env, runDate)
	}
	return &models.Report{
		RunDate:  rr.RunDate,
		Env:      rr.Env,
		Received: rr.Received / 1000,
		Payload:  []byte(rr.Payload),
	}, nil
}

var _ domsvc.ReportFetcher = (*HTTPReportFetcher)(nil)
