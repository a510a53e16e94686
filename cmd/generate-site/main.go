// Package main provides the static HTML site generator for the item database.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/config"
	"github.com/cory-johannsen/rtdb/internal/observability"
	"github.com/cory-johannsen/rtdb/internal/site"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and RTDB_ environment")
	categoriesPath := flag.String("categories", "", "path to category table YAML; empty = built-in table")
	extractionDir := flag.String("extraction-dir", "", "extraction directory; empty = latest under source.extractions_root")
	outputDir := flag.String("output-dir", "", "site output directory; overrides output.dir")
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

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	logger = observability.WithRun(logger, "site")

	table, err := catalog.Load(*categoriesPath)
	if err != nil {
		logger.Fatal("loading category table", zap.Error(err))
	}

	extraction, err := blueprint.ResolveExtraction(cfg.Source.ExtractionDir, cfg.Source.ExtractionsRoot)
	if err != nil {
		logger.Fatal("resolving extraction", zap.Error(err))
	}
	logger.Info("generating static site",
		zap.String("extraction", extraction),
		zap.String("output", cfg.Output.Dir),
		zap.Int("categories", len(table.Categories)),
	)

	src := blueprint.NewDirSource(extraction, cfg.Source.Extension, logger)
	gen, err := site.New(src, table, cfg.Site, logger)
	if err != nil {
		logger.Fatal("preparing templates", zap.Error(err))
	}
	report, err := gen.Run(cfg.Output.Dir)
	if err != nil {
		logger.Fatal("generating site", zap.Error(err))
	}

	logger.Info("site generation complete",
		zap.Int("pages", report.Pages),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
}
