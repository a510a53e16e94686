// Package config provides Viper-based configuration loading for the item
// database generators.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SourceConfig locates the blueprint extraction to read.
type SourceConfig struct {
	// ExtractionDir is an explicit extraction directory. When empty, the
	// greatest-named subdirectory of ExtractionsRoot is used.
	ExtractionDir string `mapstructure:"extraction_dir"`
	// ExtractionsRoot holds one timestamp-named directory per extraction.
	ExtractionsRoot string `mapstructure:"extractions_root"`
	// Extension is the blueprint file suffix, including the leading dot.
	Extension string `mapstructure:"extension"`
}

// OutputConfig holds generator output settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// PackageConfig holds settings for the compressed JSON database.
type PackageConfig struct {
	// Brotli enables the optional items.json.br output.
	Brotli bool `mapstructure:"brotli"`
	// GzipLevel is the gzip compression level, 1-9.
	GzipLevel int `mapstructure:"gzip_level"`
	// BrotliQuality is the brotli quality, 0-11.
	BrotliQuality int `mapstructure:"brotli_quality"`
}

// SiteConfig holds branding for the static HTML site.
type SiteConfig struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path the log is appended to.
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Output  OutputConfig  `mapstructure:"output"`
	Package PackageConfig `mapstructure:"package"`
	Site    SiteConfig    `mapstructure:"site"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSource(c.Source); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir must not be empty")
	}
	if err := validatePackage(c.Package); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Site.Title == "" {
		errs = append(errs, "site.title must not be empty")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSource(s SourceConfig) error {
	var errs []string
	if s.ExtractionDir == "" && s.ExtractionsRoot == "" {
		errs = append(errs, "one of source.extraction_dir or source.extractions_root must be set")
	}
	if !strings.HasPrefix(s.Extension, ".") || len(s.Extension) < 2 {
		errs = append(errs, fmt.Sprintf("source.extension must start with '.' and name a suffix, got %q", s.Extension))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validatePackage(p PackageConfig) error {
	var errs []string
	if p.GzipLevel < 1 || p.GzipLevel > 9 {
		errs = append(errs, fmt.Sprintf("package.gzip_level must be 1-9, got %d", p.GzipLevel))
	}
	if p.BrotliQuality < 0 || p.BrotliQuality > 11 {
		errs = append(errs, fmt.Sprintf("package.brotli_quality must be 0-11, got %d", p.BrotliQuality))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path skips the file
// and uses defaults plus environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with RTDB_ prefix
	v.SetEnvPrefix("RTDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default settings.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.extraction_dir", "")
	v.SetDefault("source.extractions_root", "extractions")
	v.SetDefault("source.extension", ".jbp")

	v.SetDefault("output.dir", "website")

	v.SetDefault("package.brotli", true)
	v.SetDefault("package.gzip_level", 9)
	v.SetDefault("package.brotli_quality", 11)

	v.SetDefault("site.title", "RT Database")
	v.SetDefault("site.subtitle", "Warhammer 40K: Rogue Trader")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
