package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/table"
)

const defaultSheet = "Sheet1"

func readXLSX(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Format(errors.New("workbook has no sheets"))
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.Format(fmt.Errorf("sheet %q has no header row", sheet))
	}

	// GetRows drops trailing empty cells, so unlabelled columns only show
	// up in the data rows.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := make([]string, width)
	copy(header, rows[0])

	records := make([][]table.Cell, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rec := make([]table.Cell, len(row))
		for j, value := range row {
			if value == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			rec[j] = xlsxCell(f, sheet, name, value)
		}
		records = append(records, rec)
	}

	return table.FromRecords(header, records)
}

// xlsxCell keeps text cells as text and converts numeric cells to numbers
func xlsxCell(f *excelize.File, sheet, name, value string) table.Cell {
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return table.StringCell(value)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return table.StringCell(value)
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return table.NumberCell(n)
	}
	return table.StringCell(value)
}

func writeXLSX(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range t.Rows {
		rec := t.Record(i)
		values := make([]interface{}, len(rec))
		for j, cell := range rec {
			values[j] = xlsxValue(cell)
		}

		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(defaultSheet, start, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(c table.Cell) interface{} {
	switch c.Kind {
	case table.Number:
		return c.Num
	case table.String:
		if c.Text == "" {
			return nil
		}
		return c.Text
	}
	return nil
}
