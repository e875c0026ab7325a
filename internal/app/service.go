// Package service provides the dashboard service that implements the
// dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/okian/devilmatch/internal/adapters/repository"
	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/okian/devilmatch/pkg/logger"
	"github.com/okian/devilmatch/pkg/metrics"
)

// Defaults for the service configuration.
const (
	DefaultUploadMaxBytes = 32 << 20
	DefaultMaxTableRows   = 500
)

// Notice levels.
const (
	NoticeWarning = "warning"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a message shown above the dashboard.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Snapshot is the result of one dataset load. A failed load still produces
// a snapshot: an empty dataset plus a notice explaining why.
type Snapshot struct {
	Dataset  *model.Dataset      `json:"-"`
	File     repository.FileInfo `json:"file"`
	Notice   *Notice             `json:"notice,omitempty"`
	LoadedAt time.Time           `json:"loaded_at"`
	Demo     bool                `json:"demo"`
}

// UploadAck describes an accepted upload.
type UploadAck struct {
	File    repository.FileInfo `json:"file"`
	Rows    int                 `json:"rows"`
	Players int                 `json:"players"`
	Matches int                 `json:"matches"`
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	store repository.Store
	cache *Cache[*Snapshot]

	// demo, when set, replaces the store as the data source.
	demo func() *model.Dataset

	// uploadMu serialises write + invalidate of concurrent uploads.
	uploadMu sync.Mutex

	// Configuration
	cacheTTL       time.Duration
	uploadMaxBytes int64
	maxTableRows   int
	now            func() time.Time

	startedAt time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the data file store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDemoSnapshot serves the dataset built by gen instead of reading files.
// Uploads are refused in this mode.
func WithDemoSnapshot(gen func() *model.Dataset) Option {
	return func(s *Service) {
		s.demo = gen
	}
}

// WithCacheTTL sets how long a loaded dataset is served.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithUploadMaxBytes sets the largest accepted upload.
func WithUploadMaxBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.uploadMaxBytes = n
		}
	}
}

// WithMaxTableRows caps the rows of the detail table.
func WithMaxTableRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTableRows = n
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithStore it reads ./data.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:       DefaultCacheTTL,
		uploadMaxBytes: DefaultUploadMaxBytes,
		maxTableRows:   DefaultMaxTableRows,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewFileStore("data", repository.WithClock(s.now))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.cache = NewCache[*Snapshot](s.cacheTTL, s.now)
	s.startedAt = s.now()
	return s
}

// Current returns the cached snapshot, loading it when the cache is cold or
// expired. It never fails because of the data: load problems are reported
// in the snapshot notice.
func (s *Service) Current(ctx context.Context) (*Snapshot, error) {
	return s.cache.GetOrLoad(ctx, s.load)
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap := s.loadSnapshot(ctx)
	took := time.Since(start)

	result := metrics.LoadOK
	switch {
	case snap.Demo:
		result = metrics.LoadDemo
	case snap.Notice != nil && snap.Notice.Level == NoticeWarning:
		result = metrics.LoadMissing
	case snap.Notice != nil:
		result = metrics.LoadFailed
	}
	metrics.RecordDatasetLoad(result, float64(took.Milliseconds()))

	sum := aggregate.Summarize(snap.Dataset)
	metrics.UpdateDatasetSize(sum.Rows, sum.Players, sum.Matches, snap.LoadedAt.Unix())

	s.logger.Info(ctx, "dataset loaded",
		logger.String("result", result),
		logger.String("source", snap.File.Path),
		logger.Int("rows", sum.Rows),
		logger.Duration("took", took),
	)
	return snap, nil
}

func (s *Service) loadSnapshot(ctx context.Context) *Snapshot {
	now := s.now()
	if s.demo != nil {
		ds := s.demo()
		if ds == nil {
			ds = model.Empty()
		}
		return &Snapshot{
			Dataset:  ds,
			File:     repository.FileInfo{Path: ds.Source, Name: ds.Source},
			Notice:   &Notice{Level: NoticeInfo, Message: "演示模式：当前展示内置快照数据，上传已停用"},
			LoadedAt: now,
			Demo:     true,
		}
	}

	file, err := s.store.Latest(ctx)
	if err != nil {
		return s.failedSnapshot(ctx, err, now)
	}
	ds, err := s.store.Read(ctx, file.Path)
	if err != nil {
		return s.failedSnapshot(ctx, err, now)
	}
	return &Snapshot{Dataset: ds, File: file, LoadedAt: now}
}

func (s *Service) failedSnapshot(ctx context.Context, err error, now time.Time) *Snapshot {
	snap := &Snapshot{Dataset: model.Empty(), LoadedAt: now}
	if errors.Is(err, repository.ErrNoDataFile) {
		s.logger.Warn(ctx, "no data file", logger.Error(err))
		snap.Notice = &Notice{Level: NoticeWarning, Message: "未找到数据文件，请上传数据文件或检查数据目录"}
		return snap
	}
	s.logger.Error(ctx, "dataset load failed", logger.Error(err))
	snap.Notice = &Notice{Level: NoticeError, Message: fmt.Sprintf("数据加载失败: %v", err)}
	return snap
}

// Refresh drops the cached dataset so the next request reloads it.
func (s *Service) Refresh(ctx context.Context) {
	s.cache.Invalidate()
	s.logger.Info(ctx, "dataset cache invalidated")
}

// Ingest validates an uploaded spreadsheet, stores it as the newest data
// file and invalidates the cache. On any error nothing is written and the
// cached dataset is kept; the error wraps ErrUpload.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (UploadAck, error) {
	ack, err := s.ingest(ctx, filename, r)
	if err != nil {
		result := metrics.UploadRejected
		if errors.Is(err, repository.ErrSave) {
			result = metrics.UploadFailed
		}
		metrics.RecordUpload(result)
		s.logger.Warn(ctx, "upload refused", logger.String("file", filename), logger.Error(err))
		return UploadAck{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	metrics.RecordUpload(metrics.UploadOK)
	s.logger.Info(ctx, "upload stored",
		logger.String("file", filename),
		logger.String("saved_as", ack.File.Name),
		logger.Int("rows", ack.Rows),
	)
	return ack, nil
}

func (s *Service) ingest(ctx context.Context, filename string, r io.Reader) (UploadAck, error) {
	if s.demo != nil {
		return UploadAck{}, ErrReadOnly
	}
	format, err := tabular.FormatFromName(filename)
	if err != nil {
		return UploadAck{}, err
	}

	body, err := io.ReadAll(io.LimitReader(r, s.uploadMaxBytes+1))
	if err != nil {
		return UploadAck{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(body)) > s.uploadMaxBytes {
		return UploadAck{}, fmt.Errorf("%w (%d bytes)", ErrUploadTooLarge, s.uploadMaxBytes)
	}

	ds, err := tabular.Parse(bytes.NewReader(body), format, filename, s.now())
	if err != nil {
		return UploadAck{}, err
	}
	if ds.IsEmpty() {
		return UploadAck{}, ErrUploadEmpty
	}

	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	info, err := s.store.Save(ctx, ds)
	if err != nil {
		return UploadAck{}, err
	}
	s.cache.Invalidate()

	sum := aggregate.Summarize(ds)
	return UploadAck{File: info, Rows: sum.Rows, Players: sum.Players, Matches: sum.Matches}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"startedAt":      s.startedAt,
		"uptimeSeconds":  int64(s.now().Sub(s.startedAt).Seconds()),
		"cacheTTL":       s.cache.TTL().String(),
		"uploadMaxBytes": s.uploadMaxBytes,
		"maxTableRows":   s.maxTableRows,
		"demo":           s.demo != nil,
		"goroutines":     runtime.NumGoroutine(),
	}
	if fs, ok := s.store.(*repository.FileStore); ok {
		stats["dataDir"] = fs.Dir()
		stats["patterns"] = fs.Patterns()
	}

	snap, loadedAt, ok := s.cache.Peek()
	stats["cached"] = ok
	if ok && snap != nil {
		stats["loadedAt"] = loadedAt
		stats["source"] = snap.File.Path
		stats["rows"] = snap.Dataset.Len()
		if snap.Notice != nil {
			stats["notice"] = snap.Notice
		}
	}
	return stats
}
