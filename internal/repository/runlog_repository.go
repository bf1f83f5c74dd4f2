package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aiwealth/internal/domain/models"
	"aiwealth/internal/domain/repository"
)

// ClickHouseRunLog implements RunLogStore for ClickHouse.
type ClickHouseRunLog struct {
	db        *sql.DB
	runTable  string
	rowsTable string
}

// NewClickHouseRunLog creates ClickHouse run-log storage.
func NewClickHouseRunLog(db *sql.DB, runTable, rowsTable string) repository.RunLogStore {
	return &ClickHouseRunLog{db: db, runTable: runTable, rowsTable: rowsTable}
}

func (s *ClickHouseRunLog) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseRunLog) StoreRun(ctx context.Context, run *models.Result) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}

	settingsJSON, err := json.Marshal(run.Meta.SettingsUsed)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(run_date, env, mode, row_count, safe_count, watch_count, block_count,
		 manual_count, total_capital, estimated_loss, brain_version, policy_version,
		 settings_used, warnings, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.runTable)
	_, err = s.db.ExecContext(ctx, q,
		run.Meta.RunDate,
		run.Meta.Env,
		run.Meta.Mode,
		len(run.Rows),
		run.Summary.SafetyClassCounts["SAFE"],
		run.Summary.SafetyClassCounts["WATCH"],
		run.Summary.SafetyClassCounts["BLOCK"],
		run.Summary.ManualApprovalCount,
		run.Summary.TotalCapitalIfAllApproved,
		run.Summary.EstimatedDailyLossIfAllSLHit,
		run.Meta.BrainVersion,
		run.Meta.PolicyVersion,
		string(settingsJSON),
		run.Warnings,
		run.Errors,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return s.storeRows(ctx, run)
}

func (s *ClickHouseRunLog) storeRows(ctx context.Context, run *models.Result) error {
	if len(run.Rows) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(run.Rows); start += chunkSize {
		end := start + chunkSize
		if end > len(run.Rows) {
			end = len(run.Rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, r := range run.Rows[start:end] {
			if r.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				run.Meta.RunDate,
				run.Meta.Env,
				r.Symbol,
				r.Profile,
				r.RiskBucket,
				r.SafetyClass,
				r.AISuggestion,
				nullableFloat(r.ExpectedReturnPct),
				nullableFloat(r.DownsidePct),
				nullableFloat(r.RRRatio),
				nullableFloat(r.CapitalRequired),
				r.AIReasonShort,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf(`INSERT INTO %s
			(run_date, env, symbol, profile, risk_bucket, safety_class, suggestion,
			 expected_return_pct, downside_pct, rr_ratio, capital_required, short_reason)
			VALUES %s`, s.rowsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseRunLog) QueryRuns(ctx context.Context, runDate, env string, limit int) ([]models.RunLogEntry, error) {
	conds := []string{"1 = 1"}
	args := []interface{}{}
	if runDate != "" {
		conds = append(conds, "run_date = ?")
		args = append(args, runDate)
	}
	if env != "" {
		conds = append(conds, "env = ?")
		args = append(args, env)
	}
	args = append(args, limit)

	q := fmt.Sprintf(`SELECT run_date, env, mode, row_count, safe_count, watch_count,
		block_count, manual_count, total_capital, estimated_loss, brain_version, created_at
		FROM %s WHERE %s ORDER BY created_at DESC LIMIT ?`,
		s.runTable, strings.Join(conds, " AND "))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RunLogEntry
	for rows.Next() {
		var e models.RunLogEntry
		if err := rows.Scan(&e.RunDate, &e.Env, &e.Mode, &e.RowCount, &e.SafeCount,
			&e.WatchCount, &e.BlockCount, &e.ManualCount, &e.TotalCapital,
			&e.EstimatedLoss, &e.BrainVersion, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *ClickHouseRunLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseRunLog) Close() error {
	return nil // Managed by pkg
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
