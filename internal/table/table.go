package table

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

// Kind is the type of a cell value
type Kind int

const (
	Empty Kind = iota
	String
	Number
)

// Cell is a single spreadsheet value
type Cell struct {
	Kind Kind
	Text string
	Num  float64
}

// StringCell creates a text cell
func StringCell(s string) Cell {
	return Cell{Kind: String, Text: s}
}

// NumberCell creates a numeric cell
func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Num: f}
}

// String renders the cell value as text; numbers use the shortest exact form
func (c Cell) String() string {
	switch c.Kind {
	case String:
		return c.Text
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	}
	return ""
}

// IsBlank reports whether the cell is missing or only whitespace
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case Empty:
		return true
	case String:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// Row maps column names to cells. Absent keys read as Empty.
type Row map[string]Cell

// Table is an ordered sequence of rows sharing a column list
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table. Blank headers become "Unnamed: {index}";
// duplicate headers are a format error.
func New(columns []string) (*Table, error) {
	names := make([]string, len(columns))
	seen := make(map[string]bool, len(columns))

	for i, col := range columns {
		name := strings.TrimSpace(col)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return nil, apperrors.Format(fmt.Errorf("duplicate column %q", name))
		}
		seen[name] = true
		names[i] = name
	}

	return &Table{Columns: names}, nil
}

// FromRecords builds a table from a header and positional records. Short
// records are padded with empty cells; extra values are a format error.
func FromRecords(header []string, records [][]Cell) (*Table, error) {
	t, err := New(header)
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if len(rec) > len(t.Columns) {
			return nil, apperrors.Format(fmt.Errorf("row %d has %d values but the header has %d columns",
				i+1, len(rec), len(t.Columns)))
		}
		t.AppendRecord(rec)
	}

	return t, nil
}

// AppendRecord adds a row from positional values
func (t *Table) AppendRecord(rec []Cell) {
	row := make(Row, len(t.Columns))
	for j, col := range t.Columns {
		if j < len(rec) {
			row[col] = rec[j]
		} else {
			row[col] = Cell{}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Get returns the cell at (row, column)
func (t *Table) Get(row int, col string) Cell {
	return t.Rows[row][col]
}

// Set stores a cell at (row, column)
func (t *Table) Set(row int, col string, c Cell) {
	t.Rows[row][col] = c
}

// ResetColumn makes sure the column exists and blanks every row in it.
// An existing column keeps its position; a new one is appended.
func (t *Table) ResetColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for _, row := range t.Rows {
		row[name] = StringCell("")
	}
}

// Require returns a format error naming every missing column
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperrors.Format(fmt.Errorf("input is missing required column(s): %s",
			strings.Join(missing, ", ")))
	}
	return nil
}

// Record returns the cells of a row in column order
func (t *Table) Record(row int) []Cell {
	rec := make([]Cell, len(t.Columns))
	for j, col := range t.Columns {
		rec[j] = t.Rows[row][col]
	}
	return rec
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	return t.Head(len(t.Rows))
}

// Head returns a copy holding the first n rows
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}

	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, n),
	}
	for i := 0; i < n; i++ {
		row := make(Row, len(t.Rows[i]))
		for k, v := range t.Rows[i] {
			row[k] = v
		}
		out.Rows[i] = row
	}
	return out
}
