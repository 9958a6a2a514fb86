// electricity-atlas - Global Electricity Statistics Platform
//
// Usage:
//   electricity-atlas pipeline run --csv renewable_electricity.csv [options]
//   electricity-atlas serve [--port 8080]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"electricity-atlas/api"
	"electricity-atlas/dataset"
	"electricity-atlas/db/postgres"
	"electricity-atlas/pipeline"
	"electricity-atlas/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultJSONEndpoint = "https://api.worldbank.org/v2/country/all/indicator/EG.USE.ELEC.KH.PC?format=json&per_page=20000"
	defaultXMLEndpoint  = "https://api.worldbank.org/v2/country/all/indicator/EG.ELC.LOSS.ZS?per_page=20000"
)

func main() {
	// Optional .env; real env vars win via the flags' EnvVars bindings.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "electricity-atlas",
		Usage:   "Multi-source electricity statistics: ingestion pipeline and exploration dashboard",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Value:   false,
				Usage:   "Enable debug logging (per-stage row accounting)",
				EnvVars: []string{"ATLAS_VERBOSE"},
			},
		},

		Commands: []*cli.Command{
			pipelineCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		platform.LogFatal(slog.Default(), "command failed", err)
	}
}

// =============================================================================
// PIPELINE COMMAND
// =============================================================================

func pipelineCommand() *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "Ingestion pipeline operations",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full ingestion pipeline once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the wide-format renewable electricity CSV",
						Required: true,
						EnvVars:  []string{"ATLAS_CSV_INPUT"},
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Value:   ".",
						Usage:   "Directory for processed and integrated CSV outputs",
						EnvVars: []string{"ATLAS_OUTPUT_DIR"},
					},
					&cli.StringFlag{
						Name:    "json-endpoint",
						Value:   defaultJSONEndpoint,
						Usage:   "JSON API endpoint for per-capita consumption",
						EnvVars: []string{"ATLAS_JSON_ENDPOINT"},
					},
					&cli.StringFlag{
						Name:    "xml-endpoint",
						Value:   defaultXMLEndpoint,
						Usage:   "XML API endpoint for transmission and distribution losses",
						EnvVars: []string{"ATLAS_XML_ENDPOINT"},
					},
					&cli.StringFlag{
						Name:    "postgres-dsn",
						Value:   "postgres://localhost:5432/electricity?sslmode=disable",
						Usage:   "Postgres connection string",
						EnvVars: []string{"ATLAS_POSTGRES_DSN"},
					},
					&cli.StringFlag{
						Name:    "mongo-uri",
						Value:   "mongodb://localhost:27017",
						Usage:   "MongoDB connection URI",
						EnvVars: []string{"ATLAS_MONGO_URI"},
					},
					&cli.StringFlag{
						Name:    "mongo-database",
						Value:   "electricity_db",
						Usage:   "MongoDB database name",
						EnvVars: []string{"ATLAS_MONGO_DATABASE"},
					},
					&cli.StringFlag{
						Name:    "mongo-collection",
						Value:   "electricity_use_per_capita",
						Usage:   "MongoDB collection for consumption records",
						EnvVars: []string{"ATLAS_MONGO_COLLECTION"},
					},
				},
				Action: runPipeline,
			},
		},
	}
}

func runPipeline(c *cli.Context) error {
	logger := platform.InitLogger(c.Bool("verbose"))

	cfg := pipeline.Config{
		CSVInput:        c.String("csv"),
		OutputDir:       c.String("output-dir"),
		JSONEndpoint:    c.String("json-endpoint"),
		XMLEndpoint:     c.String("xml-endpoint"),
		PostgresDSN:     c.String("postgres-dsn"),
		MongoURI:        c.String("mongo-uri"),
		MongoDatabase:   c.String("mongo-database"),
		MongoCollection: c.String("mongo-collection"),
	}

	runner := pipeline.NewRunner(cfg, logger)
	if err := runner.Run(context.Background()); err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Integrated dataset written to %s\n", cfg.IntegratedCSVPath())
	return nil
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the exploration dashboard",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP port",
				EnvVars: []string{"ATLAS_PORT"},
			},
			&cli.StringFlag{
				Name:    "dataset",
				Value:   "integrated_electricity_dataset.csv",
				Usage:   "Path to the integrated dataset CSV",
				EnvVars: []string{"ATLAS_DATASET"},
			},
			&cli.StringFlag{
				Name:  "postgres-dsn",
				Usage: "Load the integrated dataset from Postgres instead of the CSV",
				// Not ATLAS_POSTGRES_DSN: a DSN exported for pipeline runs
				// must not switch the serve data source.
				EnvVars: []string{"ATLAS_SERVE_POSTGRES_DSN"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logger := platform.InitLogger(c.Bool("verbose"))

	records, err := loadDataset(c, logger)
	if err != nil {
		return err
	}

	config := api.DefaultConfig()
	config.Port = c.Int("port")

	server := api.NewServer(records, logger, config)
	return server.StartWithGracefulShutdown()
}

func loadDataset(c *cli.Context, logger *slog.Logger) ([]dataset.ElectricityRecord, error) {
	if dsn := c.String("postgres-dsn"); dsn != "" {
		store, err := postgres.Connect(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open relational store: %w", err)
		}
		defer store.Close()
		records, err := store.Integrated(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load integrated table: %w", err)
		}
		logger.Info("integrated dataset loaded", "source", "postgres", "records", len(records))
		return records, nil
	}

	path := c.String("dataset")
	records, err := dataset.ReadRecordsCSV(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load integrated dataset: %w", err)
	}
	logger.Info("integrated dataset loaded", "source", "csv", "path", path, "records", len(records))
	return records, nil
}
