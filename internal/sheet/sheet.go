package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/table"
)

// Format is a spreadsheet serialization format
type Format string

const (
	XLSX   Format = "xlsx"
	CSV    Format = "csv"
	SQLite Format = "sqlite"
)

// DefaultFormat is used when no format is requested
const DefaultFormat = XLSX

const baseName = "translated_simulation"

var contentTypes = map[Format]string{
	XLSX:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	CSV:    "text/csv",
	SQLite: "application/vnd.sqlite3",
}

// Artifact is a serialized table ready to be offered for download
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Formats returns the supported output formats
func Formats() []Format {
	return []Format{XLSX, CSV, SQLite}
}

// ParseFormat validates a format name. An empty name selects the default.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		return DefaultFormat, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", apperrors.Format(fmt.Errorf("unsupported format %q (supported: xlsx, csv, sqlite)", name))
	}
	return f, nil
}

// FileName returns the fixed artifact name for the format
func (f Format) FileName() string {
	return baseName + "." + string(f)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Assemble serializes the table. The same table always yields the same
// content; any serialization failure is a format error.
func Assemble(t *table.Table, format Format) (Artifact, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case XLSX:
		data, err = writeXLSX(t)
	case CSV:
		data, err = writeCSV(t)
	case SQLite:
		data, err = writeSQLite(t)
	default:
		return Artifact{}, apperrors.Format(fmt.Errorf("unsupported format %q (supported: xlsx, csv, sqlite)", format))
	}
	if err != nil {
		if apperrors.IsFormat(err) {
			return Artifact{}, err
		}
		return Artifact{}, apperrors.Format(fmt.Errorf("failed to serialize %s: %w", format, err))
	}

	return Artifact{
		Name:        format.FileName(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// Read parses an xlsx (first sheet) or csv spreadsheet
func Read(r io.Reader, format Format) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)

	switch format {
	case XLSX:
		t, err = readXLSX(r)
	case CSV:
		t, err = readCSV(r)
	default:
		return nil, apperrors.Format(fmt.Errorf("cannot read %q input (supported: xlsx, csv)", format))
	}
	if err != nil {
		if apperrors.IsFormat(err) {
			return nil, err
		}
		return nil, apperrors.Format(fmt.Errorf("failed to read %s input: %w", format, err))
	}
	return t, nil
}

// ReadFile reads a spreadsheet, taking the format from the file extension
func ReadFile(path string) (*table.Table, error) {
	format := Format(internal.FormatFromPath(path))
	if format != XLSX && format != CSV {
		return nil, apperrors.Format(fmt.Errorf("unsupported input file %q: expected .xlsx or .csv", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	return Read(bytes.NewReader(data), format)
}
