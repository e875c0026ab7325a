package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/devilmatch/internal/domain/model"
)

// utf8BOM prefixes CSV exports so spreadsheet tools detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a comma-separated file. A leading UTF-8 byte order mark is
// ignored and rows may have differing lengths.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return newTable(grid)
}

// WriteCSV writes ds in its column layout. With bom set the output starts
// with a UTF-8 byte order mark.
func WriteCSV(w io.Writer, ds *model.Dataset, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}

	fields := fieldsOf(ds)
	cw := csv.NewWriter(w)
	if err := cw.Write(headerOf(fields)); err != nil {
		return fmt.Errorf("%w: header: %v", ErrEncode, err)
	}
	if ds != nil {
		row := make([]string, len(fields))
		for i := range ds.Records {
			rec := &ds.Records[i]
			for j, f := range fields {
				row[j] = cellString(rec, f)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("%w: row %d: %v", ErrEncode, i+2, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}
