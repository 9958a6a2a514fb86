// Package pipeline orchestrates the ingestion run: extract the three raw
// sources, land them in their stores, read them back, normalize country
// codes, inner-join, and write the integrated outputs. The flow is strictly
// linear and single-threaded; the first error aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"electricity-atlas/dataset"
	"electricity-atlas/db/mongodb"
	"electricity-atlas/db/postgres"
	"electricity-atlas/pipeline/extract"
	"electricity-atlas/pipeline/integrate"
	"electricity-atlas/pipeline/normalize"
)

// Output file names within Config.OutputDir.
const (
	RenewableProcessedCSV = "renewable_electricity_processed.csv"
	LossesProcessedCSV    = "electricity_losses_pct_processed.csv"
	IntegratedCSV         = "integrated_electricity_dataset.csv"
)

// Config holds everything one run needs. All values come from CLI flags or
// their ATLAS_* env vars.
type Config struct {
	CSVInput  string
	OutputDir string

	JSONEndpoint string
	XMLEndpoint  string

	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Runner executes the pipeline.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// IntegratedCSVPath returns where a run with this config writes the final CSV.
func (c Config) IntegratedCSVPath() string {
	return filepath.Join(c.OutputDir, IntegratedCSV)
}

// Run executes one full ingestion. Store connections are opened here and
// closed before returning; nothing is shared across runs.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID)
	logger.Info("pipeline started")

	pg, err := postgres.Connect(r.cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", runID, err)
	}
	defer pg.Close()

	docs, err := mongodb.Connect(ctx, r.cfg.MongoURI, r.cfg.MongoDatabase, r.cfg.MongoCollection)
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", runID, err)
	}
	defer docs.Close(ctx)

	// Stage 1: wide CSV -> long rows -> processed CSV + relational table.
	renewableRaw, err := extract.RenewableCSV(r.cfg.CSVInput)
	if err != nil {
		return fmt.Errorf("renewable extract: %w", err)
	}
	logger.Info("renewable CSV extracted", "rows", len(renewableRaw))

	renewablePath := filepath.Join(r.cfg.OutputDir, RenewableProcessedCSV)
	if err := dataset.WriteIndicatorCSV(renewablePath, "renewable_electricity_percent", renewableRaw); err != nil {
		return fmt.Errorf("renewable processed CSV: %w", err)
	}
	if err := pg.ReplaceRenewable(ctx, renewableRaw); err != nil {
		return fmt.Errorf("renewable load: %w", err)
	}

	// Stage 2: JSON API -> document store.
	consumptionRaw, err := extract.ConsumptionJSON(ctx, r.cfg.JSONEndpoint)
	if err != nil {
		return fmt.Errorf("consumption extract: %w", err)
	}
	logger.Info("consumption JSON extracted", "rows", len(consumptionRaw))

	if err := docs.ReplaceConsumption(ctx, consumptionRaw); err != nil {
		return fmt.Errorf("consumption load: %w", err)
	}

	// Stage 3: XML API -> processed CSV + relational table.
	lossesRaw, err := extract.LossesXML(ctx, r.cfg.XMLEndpoint)
	if err != nil {
		return fmt.Errorf("losses extract: %w", err)
	}
	logger.Info("losses XML extracted", "rows", len(lossesRaw))

	lossesPath := filepath.Join(r.cfg.OutputDir, LossesProcessedCSV)
	if err := dataset.WriteIndicatorCSV(lossesPath, "electricity_losses_pct", lossesRaw); err != nil {
		return fmt.Errorf("losses processed CSV: %w", err)
	}
	if err := pg.ReplaceLosses(ctx, lossesRaw); err != nil {
		return fmt.Errorf("losses load: %w", err)
	}

	// Stage 4: read everything back from the stores.
	renewable, err := pg.Renewable(ctx)
	if err != nil {
		return fmt.Errorf("renewable read-back: %w", err)
	}
	losses, err := pg.Losses(ctx)
	if err != nil {
		return fmt.Errorf("losses read-back: %w", err)
	}
	consumption, err := docs.Consumption(ctx)
	if err != nil {
		return fmt.Errorf("consumption read-back: %w", err)
	}

	// Stage 5: ISO alpha-3 normalization. Rows that fail the lookup are
	// dropped; counts are logged for accounting only.
	renewable = normalizeStage(logger, "renewable", renewable)
	losses = normalizeStage(logger, "losses", losses)
	consumption = normalizeStage(logger, "consumption", consumption)

	// Stage 6: inner-join the three sources on (country_code, year).
	records := integrate.Records(renewable, losses, consumption)
	logger.Info("datasets integrated", "rows", len(records))

	// Stage 7: final outputs.
	if err := dataset.WriteRecordsCSV(r.cfg.IntegratedCSVPath(), records); err != nil {
		return fmt.Errorf("integrated CSV: %w", err)
	}
	if err := pg.ReplaceIntegrated(ctx, records); err != nil {
		return fmt.Errorf("integrated load: %w", err)
	}

	logger.Info("pipeline completed", "integrated_rows", len(records))
	return nil
}

func normalizeStage(logger *slog.Logger, name string, rows []dataset.IndicatorRow) []dataset.IndicatorRow {
	normalized := normalize.ToAlpha3(rows)
	logger.Debug("ISO normalization",
		"source", name,
		"rows_in", len(rows),
		"rows_out", len(normalized),
		"dropped", len(rows)-len(normalized),
	)
	return normalized
}
