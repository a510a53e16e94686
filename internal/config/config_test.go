package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Source: SourceConfig{
			ExtractionsRoot: "extractions",
			Extension:       ".jbp",
		},
		Output: OutputConfig{
			Dir: "website",
		},
		Package: PackageConfig{
			Brotli:        true,
			GzipLevel:     9,
			BrotliQuality: 11,
		},
		Site: SiteConfig{
			Title:    "RT Database",
			Subtitle: "Warhammer 40K: Rogue Trader",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "extractions", cfg.Source.ExtractionsRoot)
	assert.Equal(t, ".jbp", cfg.Source.Extension)
	assert.Equal(t, "website", cfg.Output.Dir)
	assert.True(t, cfg.Package.Brotli)
	assert.Equal(t, 9, cfg.Package.GzipLevel)
	assert.Equal(t, 11, cfg.Package.BrotliQuality)
	assert.Equal(t, "RT Database", cfg.Site.Title)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
source:
  extraction_dir: /data/2026-01-18-185750-manual
  extension: .json
output:
  dir: public
package:
  brotli: false
  gzip_level: 6
logging:
  level: debug
  format: console
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/2026-01-18-185750-manual", cfg.Source.ExtractionDir)
	assert.Equal(t, ".json", cfg.Source.Extension)
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.False(t, cfg.Package.Brotli)
	assert.Equal(t, 6, cfg.Package.GzipLevel)
	assert.Equal(t, 11, cfg.Package.BrotliQuality)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RTDB_OUTPUT_DIR", "from-env")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.Dir)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateSourceNeedsDirOrRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Source.ExtractionsRoot = ""
	assert.Error(t, cfg.Validate())

	cfg.Source.ExtractionDir = "/data/x"
	assert.NoError(t, cfg.Validate())
}

func TestValidateSourceExtension(t *testing.T) {
	for _, ext := range []string{"", ".", "jbp"} {
		cfg := validConfig()
		cfg.Source.Extension = ext
		assert.Error(t, cfg.Validate(), "extension %q should be rejected", ext)
	}
}

func TestValidateOutputDirEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Dir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateSiteTitleEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Site.Title = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingOutput(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Output = "logs/rtdb.log"
	assert.NoError(t, cfg.Validate())

	cfg.Logging.Output = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.output")
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Dir = ""
	cfg.Package.GzipLevel = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.dir")
	assert.Contains(t, err.Error(), "package.gzip_level")
	assert.Contains(t, err.Error(), "logging.format")
}

// Property-based tests

func TestPropertyGzipLevelRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(-100, 100).Draw(t, "level")
		cfg := validConfig()
		cfg.Package.GzipLevel = level
		err := cfg.Validate()
		if valid := level >= 1 && level <= 9; valid != (err == nil) {
			t.Fatalf("gzip_level %d: valid=%v err=%v", level, valid, err)
		}
	})
}

func TestPropertyBrotliQualityRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quality := rapid.IntRange(-100, 100).Draw(t, "quality")
		cfg := validConfig()
		cfg.Package.BrotliQuality = quality
		err := cfg.Validate()
		if valid := quality >= 0 && quality <= 11; valid != (err == nil) {
			t.Fatalf("brotli_quality %d: valid=%v err=%v", quality, valid, err)
		}
	})
}
