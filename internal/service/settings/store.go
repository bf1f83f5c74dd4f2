package settings

import (
	"context"
	"errors"
	"fmt"

	"aiwealth/internal/domain/repository"
	pkgcache "aiwealth/pkg/cache"

	"github.com/tidwall/gjson"
)

const payloadKey = "settings:payload"

// Store keeps the raw risk-settings payload in the layered cache so reads
// hit memory and writes survive restarts through Redis. The payload is
// opaque bytes: unknown fields pass through untouched.
type Store struct {
	cache pkgcache.Service
}

// NewStore creates a settings store on top of a cache service.
func NewStore(c pkgcache.Service) repository.SettingsStore {
	return &Store{cache: c}
}

// Get returns the current settings payload, or nil when none has been saved.
// A nil payload downstream puts the brain into SAFE_GUARD mode.
func (s *Store) Get(ctx context.Context) ([]byte, error) {
	var raw string
	if err := s.cache.Get(ctx, payloadKey, &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("settings get: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	return []byte(raw), nil
}

// Put validates and stores a new settings payload. Only a JSON object is
// accepted; arrays and scalars are rejected before they can poison reads.
func (s *Store) Put(ctx context.Context, payload []byte) error {
	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("settings put: payload is not valid JSON")
	}
	if !gjson.ParseBytes(payload).IsObject() {
		return fmt.Errorf("settings put: payload must be a JSON object")
	}
	if err := s.cache.Set(ctx, payloadKey, string(payload), 0); err != nil {
		return fmt.Errorf("settings put: %w", err)
	}
	return nil
}
