package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"aiwealth/internal/brain"
	"aiwealth/internal/domain/models"
	"aiwealth/internal/usecase"
	xlogger "aiwealth/pkg/logger"
)

type stubReportFetcher struct {
	report *models.Report
	err    error
}

func (f *stubReportFetcher) FetchControlRun(ctx context.Context, env, runDate string) (*models.Report, error) {
	return f.report, f.err
}

type stubProfileFetcher struct{}

func (f *stubProfileFetcher) FetchProfileBrokerMap(ctx context.Context) (map[string]string, error) {
	return nil, nil
}

type stubSettingsStore struct {
	payload []byte
}

func (f *stubSettingsStore) Get(ctx context.Context) ([]byte, error) { return f.payload, nil }
func (f *stubSettingsStore) Put(ctx context.Context, payload []byte) error {
	f.payload = payload
	return nil
}

type stubRunLogStore struct {
	entries   []models.RunLogEntry
	healthErr error
}

func (f *stubRunLogStore) Init(ctx context.Context) error                          { return nil }
func (f *stubRunLogStore) StoreRun(ctx context.Context, run *models.Result) error  { return nil }
func (f *stubRunLogStore) Health(ctx context.Context) error                        { return f.healthErr }
func (f *stubRunLogStore) Close() error                                            { return nil }
func (f *stubRunLogStore) QueryRuns(ctx context.Context, runDate, env string, limit int) ([]models.RunLogEntry, error) {
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type stubQueue struct {
	published int
}

func (f *stubQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	f.published++
	return nil
}

const tableJSON = `{
	"meta": {"run_date": "2025-12-15", "env": "SIM"},
	"rows": [
		{"symbol": "TCS", "entry_price": 100, "target_price": 110, "stop_loss": 95,
		 "ai_reason": "Risk bucket: CONSERVATIVE.", "ai_recommendation": "BUY"},
		{"symbol": "INFY", "entry_price": 100, "target_price": 90, "stop_loss": 95}
	]
}`

func newTestServer(t *testing.T, runlog *stubRunLogStore, queue *stubQueue) (*echo.Echo, *stubSettingsStore) {
	t.Helper()
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	settings := &stubSettingsStore{payload: []byte(`{"base_currency": "INR"}`)}
	fetcher := &stubReportFetcher{report: &models.Report{
		RunDate: "2025-12-15",
		Env:     "SIM",
		Payload: []byte(tableJSON),
	}}
	uc := usecase.NewConsoleUseCase(brain.New(), fetcher, &stubProfileFetcher{}, settings, runlog, queue)

	e := echo.New()
	NewConsoleEchoHandler(logger, uc, runlog).RegisterRoutes(e)
	return e, settings
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCoreBusinessEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodPost, "/api/aiwealth/core-business",
		`{"settings": {"base_currency": "INR"}, "table": `+tableJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, int64(200), gjson.Get(body, "status").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "data.rows.#").Int())
	assert.Equal(t, "NORMAL", gjson.Get(body, "data.meta.mode").Str)
	assert.Equal(t, "BUY", gjson.Get(body, "data.rows.0.ai_suggestion").Str)
	assert.Equal(t, "REJECT", gjson.Get(body, "data.rows.1.ai_suggestion").Str)
}

func TestCoreBusinessMissingTable(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodPost, "/api/aiwealth/core-business", `{"settings": {}}`)
	body := rec.Body.String()
	assert.Equal(t, int64(400), gjson.Get(body, "status").Int())
}

func TestTableEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/validation/table?env=SIM&view=BLOCKED", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	// INFY has negative expected return and lands in BLOCK.
	assert.Equal(t, int64(1), gjson.Get(body, "data.rows.#").Int())
	assert.Equal(t, "INFY", gjson.Get(body, "data.rows.0.symbol").Str)
	assert.Equal(t, "BLOCKED", gjson.Get(body, "data.meta.view_mode").Str)
}

func TestTableRejectsBadEnv(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/validation/table?env=STAGING", "")
	body := rec.Body.String()
	assert.Equal(t, int64(400), gjson.Get(body, "status").Int())
}

func TestRunlogEndpoint(t *testing.T) {
	runlog := &stubRunLogStore{entries: []models.RunLogEntry{
		{RunDate: "2025-12-15", Env: "SIM", Mode: "NORMAL", RowCount: 2},
	}}
	e, _ := newTestServer(t, runlog, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/runlog?env=SIM", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "data.total").Int())
	assert.Equal(t, "2025-12-15", gjson.Get(body, "data.rows.0.run_date").Str)
}

func TestSettingsRoundTrip(t *testing.T) {
	e, settings := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"base_currency": "INR"}`, rec.Body.String())

	rec = do(e, http.MethodPut, "/api/aiwealth/settings", `{"max_daily_loss_pct": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored := string(settings.payload)
	assert.Equal(t, 3.0, gjson.Get(stored, "max_daily_loss_pct").Num)
	assert.Equal(t, "INR", gjson.Get(stored, "base_currency").Str)
}

func TestSettingsUpdateRejectsOutOfRange(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodPut, "/api/aiwealth/settings", `{"max_daily_loss_pct": 250}`)
	body := rec.Body.String()
	assert.Equal(t, int64(400), gjson.Get(body, "status").Int())
}

func TestReplayEndpoint(t *testing.T) {
	queue := &stubQueue{}
	e, _ := newTestServer(t, &stubRunLogStore{}, queue)

	rec := do(e, http.MethodPost, "/api/aiwealth/replay", `{"run_date": "2025-12-10", "env": "SIM"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, queue.published)
	assert.Equal(t, "queued", gjson.Get(rec.Body.String(), "data.status").Str)
}

func TestExportCSVEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/validation/table/export?env=SIM", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "validation_2025-12-15_sim.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "symbol,profile,direction"))
}

func TestCachedTableEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/cached/table?env=SIM&view=ALL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	assert.Equal(t, int64(2), gjson.Get(first, "rows.#").Int())

	// Second hit is served from the byte cache and must be identical.
	rec = do(e, http.MethodGet, "/api/aiwealth/cached/table?env=SIM&view=ALL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, rec.Body.String())
}

func TestCachedRunlogEndpointKeysOnLimit(t *testing.T) {
	runlog := &stubRunLogStore{entries: []models.RunLogEntry{
		{RunDate: "2025-12-15", Env: "SIM", Mode: "NORMAL", RowCount: 2},
		{RunDate: "2025-12-14", Env: "SIM", Mode: "SAFE_GUARD", RowCount: 1},
		{RunDate: "2025-12-13", Env: "SIM", Mode: "NORMAL", RowCount: 3},
	}}
	e, _ := newTestServer(t, runlog, &stubQueue{})

	rec := do(e, http.MethodGet, "/api/aiwealth/cached/runlog?env=SIM&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	assert.Equal(t, int64(3), gjson.Get(first, "#").Int())

	// A different limit inside the TTL must not be served the cached
	// three-entry body.
	rec = do(e, http.MethodGet, "/api/aiwealth/cached/runlog?env=SIM&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "#").Int())

	// Repeating a limit hits its own cached body.
	rec = do(e, http.MethodGet, "/api/aiwealth/cached/runlog?env=SIM&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &stubRunLogStore{}, &stubQueue{})
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	e, _ = newTestServer(t, &stubRunLogStore{healthErr: errors.New("ping failed")}, &stubQueue{})
	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", gjson.Get(rec.Body.String(), "status").Str)
}

func TestRecentErrorsEndpoint(t *testing.T) {
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	logger.AddCollector(nil)
	defer logger.RemoveCollector()

	settings := &stubSettingsStore{payload: []byte(`{"base_currency": "INR"}`)}
	fetcher := &stubReportFetcher{report: &models.Report{RunDate: "2025-12-15", Env: "SIM", Payload: []byte(tableJSON)}}
	uc := usecase.NewConsoleUseCase(brain.New(), fetcher, &stubProfileFetcher{}, settings, &stubRunLogStore{}, &stubQueue{})

	e := echo.New()
	NewConsoleEchoHandler(logger, uc, &stubRunLogStore{}).RegisterRoutes(e)

	rec := do(e, http.MethodGet, "/api/aiwealth/errors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), gjson.Get(rec.Body.String(), "data.total").Int())

	logger.Error("publish failed", xlogger.String("env", "SIM"))
	logger.Error("publish failed", xlogger.String("env", "SIM"))

	rec = do(e, http.MethodGet, "/api/aiwealth/errors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "data.total").Int())
	assert.Equal(t, "publish failed", gjson.Get(body, "data.rows.0.message").Str)
	assert.Equal(t, int64(2), gjson.Get(body, "data.rows.0.count").Int())
}
