// Package api serves the dashboard page, its charts and the JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	service "github.com/okian/devilmatch/internal/app"
	"github.com/okian/devilmatch/internal/adapters/repository"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/okian/devilmatch/pkg/logger"
	"github.com/rs/cors"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Render(ctx context.Context, req service.Request) (*service.ViewModel, error)
	Series(ctx context.Context, scope filter.DateScope, which service.Series) (*service.ChartSeries, error)
	Export(ctx context.Context, q filter.Query) (*model.Dataset, error)
	Summary(ctx context.Context, scope filter.DateScope) (aggregate.Summary, *service.Notice, error)
	Ingest(ctx context.Context, filename string, r io.Reader) (service.UploadAck, error)
	Refresh(ctx context.Context)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Default limits for request bodies.
const (
	DefaultExportPrefix = "魔鬼匹配_筛选数据"
	multipartOverhead   = 1 << 20
)

// Server wires HTTP routes for the dashboard.
type Server struct {
	deps   Dependencies
	stats  StatsProvider
	logger logger.Logger

	exportPrefix   string
	uploadMaxBytes int64
	corsOrigins    []string
	now            func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithExportPrefix sets the file name prefix of CSV exports.
func WithExportPrefix(p string) Option {
	return func(s *Server) {
		if p != "" {
			s.exportPrefix = p
		}
	}
}

// WithUploadMaxBytes bounds the request body of uploads.
func WithUploadMaxBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.uploadMaxBytes = n
		}
	}
}

// WithCORSOrigins enables CORS on /api/* for the given origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithClock overrides the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		stats:          stats,
		logger:         logger.Get().Named("api"),
		exportPrefix:   DefaultExportPrefix,
		uploadMaxBytes: service.DefaultUploadMaxBytes,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.HandlePage, "page"))
	mux.HandleFunc("GET /charts/{file}", MetricsMiddleware(s.HandleChart, "chart"))
	mux.HandleFunc("GET /export.csv", MetricsMiddleware(s.HandleExport, "export"))
	mux.HandleFunc("POST /upload", MetricsMiddleware(s.HandleUploadForm, "upload_form"))
	mux.HandleFunc("POST /refresh", MetricsMiddleware(s.HandleRefreshForm, "refresh_form"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.HandleStats, "stats"))

	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", MetricsMiddleware(s.HandleDashboard, "api_dashboard"))
	api.HandleFunc("GET /api/summary", MetricsMiddleware(s.HandleSummary, "api_summary"))
	api.HandleFunc("POST /api/upload", MetricsMiddleware(s.HandleUpload, "api_upload"))
	api.HandleFunc("POST /api/refresh", MetricsMiddleware(s.HandleRefresh, "api_refresh"))

	var h http.Handler = api
	if len(s.corsOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(api)
	}
	mux.Handle("/api/", h)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// uploadStatus maps an ingest error to an HTTP status and error code.
func uploadStatus(err error) (int, string) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig), errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, service.ErrReadOnly):
		return http.StatusForbidden, "read_only"
	case errors.Is(err, repository.ErrSave):
		return http.StatusInternalServerError, "save_failed"
	}
	return http.StatusBadRequest, "invalid_upload"
}
