package repository

import "time"

// Default discovery settings.
const (
	DefaultPattern      = "dayresult*.xlsx"
	DefaultUploadPrefix = "uploaded_"
)

// uploadStampLayout is the timestamp part of upload file names.
const uploadStampLayout = "20060102_150405"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithPatterns sets the glob patterns a file name must match to be discovered.
func WithPatterns(patterns ...string) Option {
	return func(s *FileStore) {
		var kept []string
		for _, p := range patterns {
			if p != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			s.patterns = kept
		}
	}
}

// WithUploadPrefix sets the file name prefix of saved uploads.
func WithUploadPrefix(prefix string) Option {
	return func(s *FileStore) {
		if prefix != "" {
			s.uploadPrefix = prefix
		}
	}
}

// WithClock sets the time source used for upload names and load times.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}
