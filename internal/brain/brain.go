// Package brain implements the AI Wealth core business computation: it
// takes raw trading-signal rows plus a settings payload and produces
// enriched rows carrying a risk classification, an investability verdict and
// a run summary. The package is pure (no I/O, no clock, no shared state),
// so identical inputs always produce identical output, which is what makes
// the approval gates downstream auditable.
package brain

import (
	"golang.org/x/sync/errgroup"

	"github.com/tidwall/gjson"

	"aiwealth/internal/domain/models"
)

// Version strings stamped into every run's metadata.
const (
	BrainVersion  = "core-business-v1"
	PolicyVersion = "risk-policy-v1"
)

// Run modes, derived from the problem lists.
const (
	ModeNormal    = "NORMAL"
	ModeSafeGuard = "SAFE_GUARD"
	ModeDegraded  = "DEGRADED"
)

// Problem codes surfaced in the result. Malformed input never raises an
// error to the caller; it degrades the run mode instead.
const (
	ErrTableRowsMissing = "TABLE_ROWS_MISSING_OR_INVALID"
	WarnSettingsMissing = "SETTINGS_PAYLOAD_MISSING_OR_INVALID"
)

// Brain evaluates control-run tables. The zero configuration enriches rows
// inline; WithWorkers enables bounded parallel enrichment, which is safe
// because rows are independent, and changes nothing observable.
type Brain struct {
	workers int
}

// Option configures a Brain.
type Option func(*Brain)

// WithWorkers sets the number of concurrent row-enrichment workers.
func WithWorkers(n int) Option {
	return func(b *Brain) {
		b.workers = n
	}
}

// New creates a Brain.
func New(opts ...Option) *Brain {
	b := &Brain{workers: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Evaluate runs one control-run computation with the default view mode.
func (b *Brain) Evaluate(settingsJSON, tableJSON []byte) *models.Result {
	return b.EvaluateView(settingsJSON, tableJSON, "")
}

// EvaluateView validates both payloads, enriches every row and builds the
// run summary and metadata. It always returns a well-formed result: a
// missing rows array is an error (mode DEGRADED), a missing settings payload
// a warning (mode SAFE_GUARD), and computation proceeds with whatever is
// left so the caller can render a partial view instead of crashing.
func (b *Brain) EvaluateView(settingsJSON, tableJSON []byte, viewMode string) *models.Result {
	warnings := []string{}
	errs := []string{}

	set, ok := parseSettings(settingsJSON)
	if !ok {
		warnings = append(warnings, WarnSettingsMissing)
	}

	raws, tableMeta, ok := parseTable(tableJSON)
	if !ok {
		errs = append(errs, ErrTableRowsMissing)
	}

	rows := b.enrichAll(raws, set)

	mode := ModeNormal
	switch {
	case len(errs) > 0:
		mode = ModeDegraded
	case len(warnings) > 0:
		mode = ModeSafeGuard
	}

	if viewMode == "" {
		viewMode = "ALL"
	}

	return &models.Result{
		Rows:    rows,
		Summary: Summarize(rows, tableMeta),
		Meta: models.RunMeta{
			RunDate:          tableMeta.RunDate,
			Env:              tableMeta.Env,
			Profiles:         tableMeta.Profiles,
			ProfileBrokerMap: tableMeta.ProfileBrokerMap,
			ViewMode:         viewMode,
			BrainVersion:     BrainVersion,
			PolicyVersion:    PolicyVersion,
			Mode:             mode,
			SettingsUsed:     set,
		},
		Warnings: warnings,
		Errors:   errs,
	}
}

// parseSettings unwraps an optional {payload: {...}} envelope and extracts
// the settings snapshot. The second return is false when the payload is
// missing or not an object.
func parseSettings(settingsJSON []byte) (models.Settings, bool) {
	if len(settingsJSON) == 0 || !gjson.ValidBytes(settingsJSON) {
		return models.Settings{}, false
	}
	v := gjson.ParseBytes(settingsJSON)
	if payload := v.Get("payload"); payload.IsObject() {
		v = payload
	}
	if !v.IsObject() {
		return models.Settings{}, false
	}
	return settingsFromJSON(v), true
}

// parseTable extracts the canonical rows and run metadata. The third return
// is false when rows is missing or not an array; metadata is still read so
// a degraded run keeps its run_date and env.
func parseTable(tableJSON []byte) ([]models.RawRow, models.TableMeta, bool) {
	if len(tableJSON) == 0 || !gjson.ValidBytes(tableJSON) {
		return nil, models.TableMeta{}, false
	}
	v := gjson.ParseBytes(tableJSON)
	meta := metaFromJSON(v.Get("meta"))

	rowsVal := v.Get("rows")
	if !rowsVal.IsArray() {
		return nil, meta, false
	}

	items := rowsVal.Array()
	raws := make([]models.RawRow, 0, len(items))
	for _, item := range items {
		raws = append(raws, RowFromJSON(item))
	}
	return raws, meta, true
}

// enrichAll enriches rows preserving input order. With workers > 1 the rows
// are processed by a bounded group; each worker writes only its own index so
// output bytes are identical to the sequential path.
func (b *Brain) enrichAll(raws []models.RawRow, set models.Settings) []models.EnrichedRow {
	rows := make([]models.EnrichedRow, len(raws))
	if b.workers <= 1 || len(raws) < 2 {
		for i, r := range raws {
			rows[i] = EnrichRow(r, set)
		}
		return rows
	}

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for i := range raws {
		g.Go(func() error {
			rows[i] = EnrichRow(raws[i], set)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return rows
}
