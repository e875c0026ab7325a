// Package repository locates, reads and persists the match-statistics files
// the dashboard serves.
package repository

import (
	"context"
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
)

// FileInfo describes one data file in the store.
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Store provides access to the data files of the dashboard.
type Store interface {
	// List returns every data file matching the discovery patterns, newest first.
	List(ctx context.Context) ([]FileInfo, error)

	// Latest returns the newest data file.
	// Returns ErrNoDataFile if the directory is missing or nothing matches.
	Latest(ctx context.Context) (FileInfo, error)

	// Read decodes the data file at path.
	Read(ctx context.Context, path string) (*model.Dataset, error)

	// Load decodes the newest data file.
	Load(ctx context.Context) (*model.Dataset, error)

	// Save persists ds as a new upload file, written atomically.
	Save(ctx context.Context, ds *model.Dataset) (FileInfo, error)
}
