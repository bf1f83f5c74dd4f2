package aiwbackend

import (
	"context"
	"fmt"
	"time"

	"aiwealth/pkg/config"
	xhttp "aiwealth/pkg/http"
)

// HTTPServiceBase provides a DRY foundation for backend HTTP clients.
// It centralizes client construction and JSON request handling.
type HTTPServiceBase struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
	timeout := cfg.SignalGen.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: cfg.SignalGen.BaseURL,
		apiKey:  cfg.SignalGen.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// GetJSON issues a GET to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("backend http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + b.apiKey,
		},
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// GetJSONWithRetry issues a GET with up to `attempts` retries for transient errors.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.GetJSON(ctx, path, query, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil {
			return nil
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
