package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/devilmatch/internal/adapters/http/api"
	"github.com/okian/devilmatch/internal/adapters/http/site"
	"github.com/okian/devilmatch/internal/adapters/http/swagger"
	"github.com/okian/devilmatch/internal/adapters/repository"
	service "github.com/okian/devilmatch/internal/app"
	"github.com/okian/devilmatch/internal/config"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/okian/devilmatch/internal/sampledata"
	"github.com/okian/devilmatch/pkg/logger"
	"github.com/okian/devilmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 30 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "dashboard stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("data_dir", cfg.DataDir),
			logger.Bool("demo", cfg.DemoSnapshot),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the dashboard service over the data directory, or over
// a generated snapshot in demo mode.
func newService(cfg *config.Config) (*service.Service, error) {
	opts := []service.Option{
		service.WithStore(repository.NewFileStore(cfg.DataDir,
			repository.WithPatterns(cfg.FilePatterns...),
			repository.WithUploadPrefix(cfg.UploadPrefix),
		)),
		service.WithCacheTTL(cfg.CacheTTL),
		service.WithUploadMaxBytes(cfg.UploadMaxBytes),
		service.WithMaxTableRows(cfg.MaxTableRows),
		service.WithLogger(logger.Named("service")),
	}
	if cfg.DemoSnapshot {
		gen := sampledata.Config{
			Players: cfg.DemoPlayers,
			Matches: cfg.DemoMatches,
			Days:    sampledata.DefaultDays,
			Seed:    cfg.DemoSeed,
		}
		ds, err := sampledata.Generate(gen)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithDemoSnapshot(func() *model.Dataset { return ds }))
	}
	return service.New(opts...), nil
}

// newHandler registers every route and wraps the mux with request IDs.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithExportPrefix(cfg.ExportPrefix),
		api.WithUploadMaxBytes(cfg.UploadMaxBytes),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
		api.WithLogger(logger.Named("api")),
	).Register(ctx, mux)
	return api.RequestIDMiddleware(mux)
}

// startSystemMetricsUpdater refreshes process gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
