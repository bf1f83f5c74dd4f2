package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aiwealth/internal/domain/models"
	pkgch "aiwealth/pkg/clickhouse"
	applogger "aiwealth/pkg/logger"
)

// CHRowStore reads persisted enriched rows back out of ClickHouse for the
// validation-table and export endpoints.
type CHRowStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHRowStore(ch *pkgch.Client, table string) *CHRowStore {
	return &CHRowStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHRowStore) SetLogger(l *applogger.Logger) { s.l = l }

// GetRunRows loads every enriched row persisted for one run date and env.
func (s *CHRowStore) GetRunRows(ctx context.Context, runDate, env string) ([]models.EnrichedRow, error) {
	start := time.Now()
	const qtpl = `
        SELECT symbol, profile, risk_bucket, safety_class, suggestion,
               expected_return_pct, downside_pct, rr_ratio, capital_required, short_reason
        FROM %s
        WHERE run_date = ? AND env = ?
        ORDER BY symbol ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, runDate, env)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_run_rows query error",
				applogger.String("table", s.table),
				applogger.String("run_date", runDate),
				applogger.String("env", env),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get run rows: %w", err)
	}
	defer rows.Close()

	out := make([]models.EnrichedRow, 0, 256)
	for rows.Next() {
		var r models.EnrichedRow
		if err := rows.Scan(&r.Symbol, &r.Profile, &r.RiskBucket, &r.SafetyClass,
			&r.AISuggestion, &r.ExpectedReturnPct, &r.DownsidePct, &r.RRRatio,
			&r.CapitalRequired, &r.AIReasonShort); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_run_rows scan error",
					applogger.String("table", s.table),
					applogger.String("run_date", runDate),
					applogger.String("env", env),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_run_rows rows error",
				applogger.String("table", s.table),
				applogger.String("run_date", runDate),
				applogger.String("env", env),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_run_rows ok",
			applogger.String("table", s.table),
			applogger.String("run_date", runDate),
			applogger.String("env", env),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// GetLatestRunDate returns the most recent run date persisted for an env,
// or "" when the store is empty.
func (s *CHRowStore) GetLatestRunDate(ctx context.Context, env string) (string, error) {
	const qtpl = `SELECT max(run_date) FROM %s WHERE env = ?`
	q := fmt.Sprintf(qtpl, s.table)
	var runDate string
	if err := s.db.QueryRowContext(ctx, q, env).Scan(&runDate); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		if s.l != nil {
			s.l.Error("clickhouse latest_run_date error",
				applogger.String("table", s.table),
				applogger.String("env", env),
				applogger.Error(err),
			)
		}
		return "", fmt.Errorf("latest run date: %w", err)
	}
	return runDate, nil
}
