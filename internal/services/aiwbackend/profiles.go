package aiwbackend

import (
	"context"
	"fmt"

	domsvc "aiwealth/internal/domain/service"
	"aiwealth/pkg/config"
)

// HTTPProfileFetcher resolves profiles and their brokers from the backend.
type HTTPProfileFetcher struct{ base *HTTPServiceBase }

func NewHTTPProfileFetcher(cfg *config.Config) *HTTPProfileFetcher {
	return &HTTPProfileFetcher{base: NewHTTPServiceBase(cfg)}
}

type profilesResponse struct {
	Profiles []struct {
		Name   string `json:"name"`
		Broker string `json:"broker"`
	} `json:"profiles"`
}

func (f *HTTPProfileFetcher) FetchProfileBrokerMap(ctx context.Context) (map[string]string, error) {
	var pr profilesResponse
	if err := f.base.GetJSONWithRetry(ctx, "/api/aiwealth/profiles", nil, &pr, 3); err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	out := make(map[string]string, len(pr.Profiles))
	for _, p := range pr.Profiles {
		out[p.Name] = p.Broker
	}
	return out, nil
}

var _ domsvc.ProfileFetcher = (*HTTPProfileFetcher)(nil)
