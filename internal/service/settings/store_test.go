package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgcache "aiwealth/pkg/cache"
)

func newTestStore() *Store {
	return &Store{cache: pkgcache.NewMemoryCache()}
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore()
	payload, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore()
	doc := []byte(`{"max_daily_loss_pct": 2.5, "unknown_field": [1, 2]}`)

	require.NoError(t, s.Put(context.Background(), doc))

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	s := newTestStore()
	err := s.Put(context.Background(), []byte(`{"broken":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestPutRejectsNonObject(t *testing.T) {
	s := newTestStore()
	for _, doc := range []string{`[1, 2, 3]`, `"string"`, `42`, `true`} {
		err := s.Put(context.Background(), []byte(doc))
		require.Error(t, err, "payload %s should be rejected", doc)
		assert.Contains(t, err.Error(), "JSON object")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(context.Background(), []byte(`{"base_currency": "INR"}`)))
	require.NoError(t, s.Put(context.Background(), []byte(`{"base_currency": "USD"}`)))

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"base_currency": "USD"}`, string(got))
}
