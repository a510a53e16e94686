// Package main provides the JSON item database generator: items.json plus
// gzip and brotli variants for the client-side item browser.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/config"
	"github.com/cory-johannsen/rtdb/internal/database"
	"github.com/cory-johannsen/rtdb/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and RTDB_ environment")
	categoriesPath := flag.String("categories", "", "path to category table YAML; empty = built-in table")
	extractionDir := flag.String("extraction-dir", "", "extraction directory; empty = latest under source.extractions_root")
	outputDir := flag.String("output-dir", "", "database output directory; overrides output.dir")
	noBrotli := flag.Bool("no-brotli", false, "skip items.json.br regardless of package.brotli")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *extractionDir != "" {
		cfg.Source.ExtractionDir = *extractionDir
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *noBrotli {
		cfg.Package.Brotli = false
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	logger = observability.WithRun(logger, "database")

	table, err := catalog.Load(*categoriesPath)
	if err != nil {
		logger.Fatal("loading category table", zap.Error(err))
	}

	extraction, err := blueprint.ResolveExtraction(cfg.Source.ExtractionDir, cfg.Source.ExtractionsRoot)
	if err != nil {
		logger.Fatal("resolving extraction", zap.Error(err))
	}
	logger.Info("building item database",
		zap.String("extraction", extraction),
		zap.String("output", cfg.Output.Dir),
		zap.Bool("brotli", cfg.Package.Brotli),
	)

	src := blueprint.NewDirSource(extraction, cfg.Source.Extension, logger)
	report, err := database.New(src, table, cfg.Package, logger).Run(cfg.Output.Dir)
	if err != nil {
		logger.Fatal("building database", zap.Error(err))
	}

	logger.Info("database generation complete",
		zap.Int("items", report.Items),
		zap.Int("files", len(report.Files)),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
}
