// Package postgres is the relational store for the per-indicator tables and
// the integrated dataset. Every table is replaced wholesale on each pipeline
// run: drop, recreate, bulk insert. There is no incremental upsert.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"electricity-atlas/dataset"
)

const (
	TableRenewable  = "renewable_electricity"
	TableLosses     = "electricity_losses_pct"
	TableIntegrated = "integrated_electricity_data"
)

// Inserts are chunked to stay well under the Postgres bind-parameter limit.
const insertChunkSize = 500

// Store wraps the relational connection.
type Store struct {
	db *sqlx.DB
}

// Connect opens and pings the database.
func Connect(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReplaceRenewable replaces the renewable-electricity table.
func (s *Store) ReplaceRenewable(ctx context.Context, rows []dataset.IndicatorRow) error {
	return s.replaceIndicator(ctx, TableRenewable, "renewable_electricity_percent", rows)
}

// ReplaceLosses replaces the transmission-and-distribution-losses table.
func (s *Store) ReplaceLosses(ctx context.Context, rows []dataset.IndicatorRow) error {
	return s.replaceIndicator(ctx, TableLosses, "electricity_losses_pct", rows)
}

func (s *Store) replaceIndicator(ctx context.Context, table, metricColumn string, rows []dataset.IndicatorRow) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	createStmt := fmt.Sprintf(`
		CREATE TABLE %s (
			country_name TEXT NOT NULL,
			country_code TEXT NOT NULL,
			year         INTEGER NOT NULL,
			%s           DOUBLE PRECISION NOT NULL
		)`, table, metricColumn)
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	insertStmt := fmt.Sprintf(`
		INSERT INTO %s (country_name, country_code, year, %s)
		VALUES (:country_name, :country_code, :year, :value)`, table, metricColumn)
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, insertStmt, rows[start:end]); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// Renewable reads the renewable table back with country names.
func (s *Store) Renewable(ctx context.Context) ([]dataset.IndicatorRow, error) {
	query := fmt.Sprintf(`
		SELECT country_name, country_code, year, renewable_electricity_percent AS value
		FROM %s`, TableRenewable)
	var rows []dataset.IndicatorRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableRenewable, err)
	}
	return rows, nil
}

// Losses reads the losses table back. Country names are not selected; the
// integrator takes names from the renewable side.
func (s *Store) Losses(ctx context.Context) ([]dataset.IndicatorRow, error) {
	query := fmt.Sprintf(`
		SELECT '' AS country_name, country_code, year, electricity_losses_pct AS value
		FROM %s`, TableLosses)
	var rows []dataset.IndicatorRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableLosses, err)
	}
	return rows, nil
}

// ReplaceIntegrated replaces the final integrated table.
func (s *Store) ReplaceIntegrated(ctx context.Context, records []dataset.ElectricityRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, TableIntegrated)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", TableIntegrated, err)
	}
	createStmt := fmt.Sprintf(`
		CREATE TABLE %s (
			country_name                  TEXT NOT NULL,
			country_code                  TEXT NOT NULL,
			year                          INTEGER NOT NULL,
			renewable_electricity_percent DOUBLE PRECISION NOT NULL,
			electricity_losses_pct        DOUBLE PRECISION NOT NULL,
			electricity_use_kwh_per_capita DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (country_code, year)
		)`, TableIntegrated)
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableIntegrated, err)
	}

	insertStmt := fmt.Sprintf(`
		INSERT INTO %s (country_name, country_code, year,
			renewable_electricity_percent, electricity_losses_pct, electricity_use_kwh_per_capita)
		VALUES (:country_name, :country_code, :year,
			:renewable_electricity_percent, :electricity_losses_pct, :electricity_use_kwh_per_capita)`,
		TableIntegrated)
	for start := 0; start < len(records); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(records) {
			end = len(records)
		}
		if _, err := tx.NamedExecContext(ctx, insertStmt, records[start:end]); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", TableIntegrated, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", TableIntegrated, err)
	}
	return nil
}

// Integrated reads the final dataset, ordered for stable dashboard output.
func (s *Store) Integrated(ctx context.Context) ([]dataset.ElectricityRecord, error) {
	query := fmt.Sprintf(`
		SELECT country_name, country_code, year,
			renewable_electricity_percent, electricity_losses_pct, electricity_use_kwh_per_capita
		FROM %s
		ORDER BY country_code, year`, TableIntegrated)
	var records []dataset.ElectricityRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableIntegrated, err)
	}
	return records, nil
}
