// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/devilmatch/internal/adapters/repository"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// DataDir is scanned for result files; uploads are written here.
	DataDir string `koanf:"data_dir"`

	// FilePatterns are the glob patterns a data file must match.
	FilePatterns []string `koanf:"file_patterns"`

	// UploadPrefix names stored uploads; they are always discoverable.
	UploadPrefix string `koanf:"upload_prefix"`

	UploadMaxBytes int64         `koanf:"upload_max_bytes"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	MaxTableRows   int           `koanf:"max_table_rows"`

	// ExportPrefix names CSV exports: <prefix>_YYYYMMDD.csv.
	ExportPrefix string `koanf:"export_prefix"`

	// CORSAllowedOrigins enables CORS on /api/* when non-empty.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// DemoSnapshot serves a generated dataset instead of DataDir and
	// disables uploads.
	DemoSnapshot bool  `koanf:"demo_snapshot"`
	DemoPlayers  int   `koanf:"demo_players"`
	DemoMatches  int   `koanf:"demo_matches"`
	DemoSeed     int64 `koanf:"demo_seed"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8501",
		DataDir:         "data",
		FilePatterns:    []string{repository.DefaultPattern},
		UploadPrefix:    repository.DefaultUploadPrefix,
		UploadMaxBytes:  32 << 20,
		CacheTTL:        time.Hour,
		MaxTableRows:    500,
		ExportPrefix:    "魔鬼匹配_筛选数据",
		DemoPlayers:     200,
		DemoMatches:     400,
		DemoSeed:        1,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.UploadPrefix == "":
		return fmt.Errorf("%w: upload_prefix must not be empty", ErrInvalidConfig)
	case c.UploadMaxBytes <= 0:
		return fmt.Errorf("%w: upload_max_bytes must be positive", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	case c.MaxTableRows <= 0:
		return fmt.Errorf("%w: max_table_rows must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.DemoSnapshot && (c.DemoPlayers <= 0 || c.DemoMatches <= 0) {
		return fmt.Errorf("%w: demo_players and demo_matches must be positive", ErrInvalidConfig)
	}
	return nil
}
