package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/polyglot/internal/table"
)

// NewTable builds a table from string values; "" becomes an empty cell
func NewTable(t *testing.T, columns []string, rows ...[]string) *table.Table {
	t.Helper()

	records := make([][]table.Cell, len(rows))
	for i, row := range rows {
		rec := make([]table.Cell, len(row))
		for j, v := range row {
			if v != "" {
				rec[j] = table.StringCell(v)
			}
		}
		records[i] = rec
	}

	tbl, err := table.FromRecords(columns, records)
	if err != nil {
		t.Fatalf("Failed to build test table: %v", err)
	}
	return tbl
}

// ColumnValues returns the string values of one column in row order
func ColumnValues(t *testing.T, tbl *table.Table, column string) []string {
	t.Helper()

	if !tbl.HasColumn(column) {
		t.Fatalf("column %q not found in %v", column, tbl.Columns)
	}

	values := make([]string, tbl.Len())
	for i := range tbl.Rows {
		values[i] = tbl.Get(i, column).String()
	}
	return values
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file %s to exist", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file %s to not exist", path)
	}
}
