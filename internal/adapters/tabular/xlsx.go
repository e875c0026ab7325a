package tabular

import (
	"fmt"
	"io"

	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet written by WriteXLSX.
const SheetName = "Sheet1"

// ReadXLSX reads the first worksheet of an XLSX workbook. Cells are taken
// unformatted so dates arrive as serial numbers and numbers keep full
// precision.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrDecode)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrDecode, sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	var grid [][]string
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrDecode, sheets[0], err)
		}
		grid = append(grid, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrDecode, sheets[0], err)
	}
	return newTable(grid)
}

// WriteXLSX writes ds as a single-sheet workbook in its column layout.
func WriteXLSX(w io.Writer, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	fields := fieldsOf(ds)
	header := make([]interface{}, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%w: header: %v", ErrEncode, err)
	}

	if ds != nil {
		row := make([]interface{}, len(fields))
		for i := range ds.Records {
			rec := &ds.Records[i]
			for j, f := range fields {
				row[j] = cellValue(rec, f)
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrEncode, err)
			}
			if err := sw.SetRow(cell, row); err != nil {
				return fmt.Errorf("%w: row %d: %v", ErrEncode, i+2, err)
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}
