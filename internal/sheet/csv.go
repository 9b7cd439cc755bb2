package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/table"
)

var errEmptyCSV = errors.New("csv input has no header row")

const utf8BOM = "\ufeff"

func readCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.Format(errEmptyCSV)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	body := rows[1:]

	numeric := numericColumns(header, body)
	records := make([][]table.Cell, len(body))
	for i, row := range body {
		rec := make([]table.Cell, len(row))
		for j, value := range row {
			switch {
			case value == "":
			case j < len(numeric) && numeric[j]:
				n, _ := strconv.ParseFloat(value, 64)
				rec[j] = table.NumberCell(n)
			default:
				rec[j] = table.StringCell(value)
			}
		}
		records[i] = rec
	}

	return table.FromRecords(header, records)
}

// numericColumns marks columns whose non-empty values all parse as numbers
func numericColumns(header []string, body [][]string) []bool {
	numeric := make([]bool, len(header))
	seen := make([]bool, len(header))
	for j := range numeric {
		numeric[j] = true
	}

	for _, row := range body {
		for j, value := range row {
			if j >= len(header) || value == "" {
				continue
			}
			seen[j] = true
			if !isNumeric(value) {
				numeric[j] = false
			}
		}
	}

	for j := range numeric {
		numeric[j] = numeric[j] && seen[j]
	}
	return numeric
}

// isNumeric accepts finite decimal numbers. Values with a leading zero
// such as "007" stay text so they survive a round trip unchanged.
func isNumeric(value string) bool {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if strings.TrimSpace(value) != value {
		return false
	}

	digits := strings.TrimLeft(value, "+-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	return true
}

func writeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for i := range t.Rows {
		rec := t.Record(i)
		values := make([]string, len(rec))
		for j, cell := range rec {
			values[j] = cell.String()
		}
		if err := w.Write(values); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
