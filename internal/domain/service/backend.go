package service

import (
	"context"

	"aiwealth/internal/domain/models"
)

// ReportFetcher pulls control-run reports from the signal-generation
// backend over REST, for on-demand evaluation and replays.
type ReportFetcher interface {
	FetchControlRun(ctx context.Context, env, runDate string) (*models.Report, error)
}

// ProfileFetcher resolves the profile-to-broker mapping the backend holds.
type ProfileFetcher interface {
	FetchProfileBrokerMap(ctx context.Context) (map[string]string, error)
}
