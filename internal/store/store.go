// Package store persists computed indicator values in a local SQLite
// database. The database is the queryable system of record alongside the
// Kafka output topic; inserts are idempotent on the value's deterministic
// ID, so replayed flushes and replayed topics converge on the same rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
)

// Store manages the indicator value SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates the SQLite database at path, creating parent
// directories and the schema as needed.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS indicator_values (
			id TEXT PRIMARY KEY,
			indicator TEXT NOT NULL,
			station TEXT NOT NULL,
			variable TEXT NOT NULL,
			period_start TEXT NOT NULL,
			value REAL,
			unit TEXT NOT NULL,
			standard_name TEXT,
			input_count INTEGER NOT NULL,
			computed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_values_station ON indicator_values(station, indicator, period_start)`,
		`CREATE INDEX IF NOT EXISTS idx_values_period ON indicator_values(indicator, period_start)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveIndicatorValues inserts the given values in one transaction.
// Rows whose ID already exists are left untouched.
func (s *Store) SaveIndicatorValues(ctx context.Context, values []domain.IndicatorValue) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indicator_values
			(id, indicator, station, variable, period_start, value, unit, standard_name, input_count, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		// NaN marks "no qualifying day" results; stored as NULL.
		var value any = v.Value
		if math.IsNaN(v.Value) {
			value = nil
		}
		_, err := stmt.ExecContext(ctx,
			v.ID, v.Indicator, v.Station, v.Variable,
			v.PeriodStart.UTC().Format(time.RFC3339),
			value, v.Unit, v.StandardName, v.InputCount,
			v.ComputedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting value %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// QueryOptions narrow a ListValues call. Zero fields are ignored.
type QueryOptions struct {
	Station   string
	Indicator string
	From      time.Time
	To        time.Time
	Limit     int
}

// ListValues returns stored values matching the options, newest period first.
func (s *Store) ListValues(ctx context.Context, opts QueryOptions) ([]domain.IndicatorValue, error) {
	query := `SELECT id, indicator, station, variable, period_start, value, unit, standard_name, input_count, computed_at
		FROM indicator_values WHERE 1=1`
	var args []any

	if opts.Station != "" {
		query += ` AND station = ?`
		args = append(args, opts.Station)
	}
	if opts.Indicator != "" {
		query += ` AND indicator = ?`
		args = append(args, opts.Indicator)
	}
	if !opts.From.IsZero() {
		query += ` AND period_start >= ?`
		args = append(args, opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		query += ` AND period_start < ?`
		args = append(args, opts.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY period_start DESC, indicator, station`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer rows.Close()

	var out []domain.IndicatorValue
	for rows.Next() {
		var v domain.IndicatorValue
		var periodStart, computedAt string
		// SQLite stores NaN as NULL, and some indicators legitimately
		// produce NaN (e.g. no occurrence within the period).
		var value sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.Indicator, &v.Station, &v.Variable,
			&periodStart, &value, &v.Unit, &v.StandardName, &v.InputCount, &computedAt); err != nil {
			return nil, fmt.Errorf("scanning value row: %w", err)
		}
		if value.Valid {
			v.Value = value.Float64
		} else {
			v.Value = math.NaN()
		}
		if v.PeriodStart, err = time.Parse(time.RFC3339, periodStart); err != nil {
			return nil, fmt.Errorf("parsing period start %q: %w", periodStart, err)
		}
		if v.ComputedAt, err = time.Parse(time.RFC3339, computedAt); err != nil {
			return nil, fmt.Errorf("parsing computed at %q: %w", computedAt, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountValues returns the total number of stored indicator values.
func (s *Store) CountValues(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM indicator_values`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting values: %w", err)
	}
	return n, nil
}
