package database

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/config"
)

// Output file names.
const (
	JSONFile   = "items.json"
	GzipFile   = "items.json.gz"
	BrotliFile = "items.json.br"
)

// FileReport describes one written output file.
type FileReport struct {
	Path string
	Size int64
}

// Report summarises a packaging run.
type Report struct {
	Items  int
	Counts map[string]int
	Files  []FileReport
}

// Packager orchestrates the JSON database build from a Source to an output
// directory.
type Packager struct {
	source blueprint.Source
	table  catalog.Table
	cfg    config.PackageConfig
	logger *zap.Logger
}

// New constructs a Packager.
//
// Precondition: source and logger must be non-nil; table must be validated.
// Postcondition: returns a non-nil Packager.
func New(source blueprint.Source, table catalog.Table, cfg config.PackageConfig, logger *zap.Logger) *Packager {
	return &Packager{source: source, table: table, cfg: cfg, logger: logger}
}

// Run builds the document and writes items.json, items.json.gz and, when
// enabled, items.json.br to outputDir. Files written before a failure are
// left in place.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: returns a Report of the written files, or a non-nil error.
func (p *Packager) Run(outputDir string) (*Report, error) {
	overall := time.Now()

	doc := Build(p.source, p.table, p.logger)
	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	report := &Report{Items: len(doc.Items), Counts: doc.Counts}

	outputs := []struct {
		name     string
		enabled  bool
		compress func([]byte) ([]byte, error)
	}{
		{JSONFile, true, func(b []byte) ([]byte, error) { return b, nil }},
		{GzipFile, true, func(b []byte) ([]byte, error) { return Gzip(b, p.cfg.GzipLevel) }},
		{BrotliFile, p.cfg.Brotli, func(b []byte) ([]byte, error) { return Brotli(b, p.cfg.BrotliQuality) }},
	}
	for _, out := range outputs {
		if !out.enabled {
			p.logger.Info("brotli output disabled, skipping", zap.String("file", out.name))
			continue
		}
		encoded, err := out.compress(data)
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", out.name, err)
		}
		path := filepath.Join(outputDir, out.name)
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		report.Files = append(report.Files, FileReport{Path: path, Size: int64(len(encoded))})
		p.logger.Info("wrote database file",
			zap.String("path", path),
			zap.Int("bytes", len(encoded)),
			zap.String("ratio", fmt.Sprintf("%.1f%%", ratio(len(encoded), len(data)))),
		)
	}

	p.logCounts(report)
	p.logger.Info("database complete",
		zap.Int("items", report.Items),
		zap.Duration("elapsed", time.Since(overall).Round(time.Millisecond)),
	)
	return report, nil
}

// logCounts logs the per-category counts, largest first.
func (p *Packager) logCounts(r *Report) {
	ids := make([]string, 0, len(r.Counts))
	for id := range r.Counts {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if r.Counts[ids[i]] != r.Counts[ids[j]] {
			return r.Counts[ids[i]] > r.Counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		p.logger.Info("category count", zap.String("category", id), zap.Int("items", r.Counts[id]))
	}
}

// Gzip compresses data at the given level.
func Gzip(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Brotli compresses data at the given quality.
func Brotli(data []byte, quality int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, quality)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
