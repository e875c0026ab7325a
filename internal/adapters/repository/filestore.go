package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/domain/model"
)

// tempPattern names in-flight writes; they never match discovery patterns.
const tempPattern = ".upload-*.tmp"

// FileStore is a Store over a single directory.
//
// Discovery: files whose base name matches any pattern; the upload pattern
// (prefix + "*.xlsx") is always included so saved uploads are found. The
// newest file by modification time wins, ties broken by the greater name.
type FileStore struct {
	dir          string
	patterns     []string
	uploadPrefix string
	now          func() time.Time
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:          dir,
		patterns:     []string{DefaultPattern},
		uploadPrefix: DefaultUploadPrefix,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory the store reads from.
func (s *FileStore) Dir() string { return s.dir }

// Patterns returns the effective discovery patterns.
func (s *FileStore) Patterns() []string {
	out := append([]string(nil), s.patterns...)
	up := s.uploadPattern()
	for _, p := range out {
		if p == up {
			return out
		}
	}
	return append(out, up)
}

func (s *FileStore) uploadPattern() string { return s.uploadPrefix + "*.xlsx" }

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrNoDataFile, s.dir)
		}
		return nil, fmt.Errorf("read directory %s: %w", s.dir, err)
	}

	patterns := s.Patterns()
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !s.matches(e.Name(), patterns) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(s.dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name > files[j].Name
	})
	return files, nil
}

func (s *FileStore) matches(name string, patterns []string) bool {
	// Office lock files share the workbook's name.
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Latest implements Store.
func (s *FileStore) Latest(ctx context.Context) (FileInfo, error) {
	files, err := s.List(ctx)
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("%w: nothing matches %s in %s", ErrNoDataFile, strings.Join(s.Patterns(), ", "), s.dir)
	}
	return files[0], nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (*model.Dataset, error) {
	info, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, info.Path)
}

// Read decodes the file at path.
func (s *FileStore) Read(ctx context.Context, path string) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := tabular.FormatFromName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := tabular.Parse(f, format, path, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// Save implements Store. The file is written to a temporary name in the
// target directory and renamed into place, so readers never see a partial
// workbook. A name already taken within the same second gets a numeric
// suffix.
func (s *FileStore) Save(ctx context.Context, ds *model.Dataset) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tabular.WriteXLSX(tmp, ds); err != nil {
		_ = tmp.Close()
		cleanup()
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}

	path, err := s.freeUploadPath()
	if err != nil {
		cleanup()
		return FileInfo{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return FileInfo{Path: path, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, nil
}

// UploadName returns the file name an upload saved at t receives.
func (s *FileStore) UploadName(t time.Time) string {
	return s.uploadPrefix + t.Format(uploadStampLayout) + ".xlsx"
}

func (s *FileStore) freeUploadPath() (string, error) {
	base := strings.TrimSuffix(s.UploadName(s.now()), ".xlsx")
	for i := 1; i < 1000; i++ {
		name := base + ".xlsx"
		if i > 1 {
			name = base + "_" + strconv.Itoa(i) + ".xlsx"
		}
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no free upload name for %s", ErrSave, base)
}
