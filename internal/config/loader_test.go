package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/devilmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"DEVIL_CONFIG", "DEVIL_ADDR", "DEVIL_LOG_LEVEL", "DEVIL_LOG_FORMAT", "DEVIL_DATA_DIR",
	"DEVIL_FILE_PATTERNS", "DEVIL_CACHE_TTL", "DEVIL_MAX_TABLE_ROWS", "DEVIL_UPLOAD_MAX_BYTES",
	"DEVIL_DEMO_SNAPSHOT", "DEVIL_DEMO_PLAYERS", "DEVIL_CORS_ALLOWED_ORIGINS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.DataDir, convey.ShouldEqual, "data")
				convey.So(cfg.FilePatterns, convey.ShouldResemble, []string{"dayresult*.xlsx"})
				convey.So(cfg.UploadPrefix, convey.ShouldEqual, "uploaded_")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.MaxTableRows, convey.ShouldEqual, 500)
				convey.So(cfg.UploadMaxBytes, convey.ShouldEqual, int64(32<<20))
				convey.So(cfg.DemoSnapshot, convey.ShouldBeFalse)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DEVIL_ADDR", ":9000")
			_ = os.Setenv("DEVIL_LOG_FORMAT", "json")
			_ = os.Setenv("DEVIL_CACHE_TTL", "5m")
			_ = os.Setenv("DEVIL_MAX_TABLE_ROWS", "50")
			_ = os.Setenv("DEVIL_DEMO_SNAPSHOT", "true")
			_ = os.Setenv("DEVIL_DEMO_PLAYERS", "30")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.MaxTableRows, convey.ShouldEqual, 50)
				convey.So(cfg.DemoSnapshot, convey.ShouldBeTrue)
				convey.So(cfg.DemoPlayers, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "devil.yaml")
			yaml := "addr: \":7000\"\ndata_dir: /srv/results\nfile_patterns:\n  - \"stats*.xlsx\"\ncors_allowed_origins:\n  - https://ops.example\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("DEVIL_CONFIG", path)
			_ = os.Setenv("DEVIL_ADDR", ":7100")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7100")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/results")
				convey.So(cfg.FilePatterns, convey.ShouldResemble, []string{"stats*.xlsx"})
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://ops.example"})
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("DEVIL_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is invalid", func() {
			_ = os.Setenv("DEVIL_LOG_LEVEL", "loud")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New(context.Background())
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("Then each bound is enforced", func() {
			for _, mutate := range []func(*config.Config){
				func(c *config.Config) { c.Addr = "" },
				func(c *config.Config) { c.DataDir = "" },
				func(c *config.Config) { c.CacheTTL = 0 },
				func(c *config.Config) { c.MaxTableRows = 0 },
				func(c *config.Config) { c.UploadMaxBytes = -1 },
				func(c *config.Config) { c.LogFormat = "xml" },
				func(c *config.Config) { c.DemoSnapshot = true; c.DemoMatches = 0 },
			} {
				c := *cfg
				mutate(&c)
				convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
