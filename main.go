// propiedades-api ingests scraped CABA apartment listings, normalizes them
// into the propiedades table, and serves price predictions over HTTP.
//
// Usage:
//
//	propiedades-api load [--csv data/ventas_deptos.csv]
//	propiedades-api serve [--port 8080]
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"propiedades-api/api"
	"propiedades-api/config"
	"propiedades-api/ml"
	"propiedades-api/services"
	"propiedades-api/storage"
	"propiedades-api/utils"
)

func main() {
	app := &cli.App{
		Name:  "propiedades-api",
		Usage: "CABA real-estate data pipeline and price-prediction API",
		Commands: []*cli.Command{
			loadCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Run the ETL: read a raw scraped CSV, normalize and load into PostgreSQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "csv",
				Usage:   "Path to the raw scraped CSV export",
				EnvVars: []string{"RAW_CSV_PATH"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

			csvPath := cfg.RawCSVPath
			if c.String("csv") != "" {
				csvPath = c.String("csv")
			}

			raw, err := storage.ReadRawListings(csvPath)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			logger.Info("[load] %d raw records read from %s", len(raw), csvPath)

			store, err := storage.NewStore(cfg.DSN(), logger)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			defer store.Close()

			transformer := services.NewTransformer(logger)
			props, transformReport := transformer.Transform(raw)

			inserted, dropped, err := store.LoadBatch(props, cfg.InsertBatchSize)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}

			services.PrintLoadReport(&services.LoadReport{
				Transform: transformReport,
				Dropped:   dropped,
				Inserted:  inserted,
			})
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the propiedades and prediction HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				EnvVars: []string{"SERVER_PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

			store, err := storage.NewStore(cfg.DSN(), logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer store.Close()

			// A missing artifact only takes down the prediction path; the
			// propiedades endpoints keep serving.
			artifact, err := ml.LoadArtifact(cfg.ModelPath, cfg.ModelColumnsPath)
			if err != nil {
				logger.Error("[serve] model artifact unavailable, predictions disabled: %v", err)
			} else {
				logger.Info("[serve] model loaded: %d trees, %d feature columns",
					len(artifact.Model.Trees), len(artifact.Columns))
			}

			predictor, err := ml.NewPredictor(artifact, store, cfg.ComparableCacheTTL, logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			port := cfg.ServerPort
			if c.Int("port") != 0 {
				port = c.Int("port")
			}

			server := api.NewServer(store, predictor, port, logger)
			return server.Start()
		},
	}
}
