package sheet

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/polyglot/internal/table"
)

// TableName is the table written by the sqlite export
const TableName = "translations"

func writeSQLite(t *table.Table) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "polyglot_export_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "export.sqlite")
	if err := createDatabase(dbPath, t); err != nil {
		return nil, err
	}

	return os.ReadFile(dbPath)
}

func createDatabase(dbPath string, t *table.Table) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(createTableQuery(t)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if len(t.Columns) == 0 || t.Len() == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(TableName), placeholders))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range t.Rows {
		rec := t.Record(i)
		args := make([]interface{}, len(rec))
		for j, cell := range rec {
			args[j] = sqlValue(cell)
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func createTableQuery(t *table.Table) string {
	if len(t.Columns) == 0 {
		// SQLite needs at least one column
		return fmt.Sprintf("CREATE TABLE %s (%s TEXT)", quoteIdent(TableName), quoteIdent("Unnamed: 0"))
	}

	names := uniqueIdents(t.Columns)
	defs := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		defs[j] = quoteIdent(names[j]) + " " + columnType(t, col)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(TableName), strings.Join(defs, ", "))
}

// columnType is REAL when every non-empty cell is numeric
func columnType(t *table.Table, col string) string {
	numeric := false
	for _, row := range t.Rows {
		switch row[col].Kind {
		case table.Number:
			numeric = true
		case table.String:
			return "TEXT"
		}
	}
	if numeric {
		return "REAL"
	}
	return "TEXT"
}

func sqlValue(c table.Cell) interface{} {
	switch c.Kind {
	case table.Number:
		return c.Num
	case table.String:
		return c.Text
	}
	return nil
}

// uniqueIdents renames columns that only differ by case, since SQLite
// compares identifiers case-insensitively. Later duplicates get a numeric
// suffix that does not clash with any other column.
func uniqueIdents(columns []string) []string {
	original := make(map[string]bool, len(columns))
	for _, col := range columns {
		original[strings.ToLower(col)] = true
	}

	used := make(map[string]bool, len(columns))
	names := make([]string, len(columns))
	for j, col := range columns {
		name := col
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", col, n)
			if original[strings.ToLower(name)] {
				name = col
			}
		}
		used[strings.ToLower(name)] = true
		names[j] = name
	}
	return names
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
