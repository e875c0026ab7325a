// Package tabular converts spreadsheet bytes (XLSX, CSV) into datasets and
// datasets back into spreadsheet bytes.
package tabular

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
)

// Format is a supported file encoding.
type Format string

// Supported encodings.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Table is an untyped grid: a header row and the data rows beneath it.
type Table struct {
	Header []string
	Rows   [][]string
}

// FormatFromName picks the encoding from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(name))
}

// Read parses r in the given format.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatCSV:
		return ReadCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Parse reads and decodes r in one step.
func Parse(r io.Reader, format Format, source string, loadedAt time.Time) (*model.Dataset, error) {
	t, err := Read(r, format)
	if err != nil {
		return nil, err
	}
	return Decode(t, source, loadedAt)
}

// newTable drops trailing blank rows and fully blank rows between data.
func newTable(rows [][]string) (*Table, error) {
	var kept [][]string
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrDecode)
	}
	return &Table{Header: kept[0], Rows: kept[1:]}, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
