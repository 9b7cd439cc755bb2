package processor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/pacing"
	"codeberg.org/snonux/polyglot/internal/sheet"
	"codeberg.org/snonux/polyglot/internal/testutil"
)

const inputCSV = `Scenario,Prompt - English to Italian,Prompt - English to German,Prompt - English to French
Pricing,Should we raise prices?,Should we raise prices?,Should we raise prices?
Hiring,,Hire two engineers,Hire two engineers
`

func testSettings(t *testing.T, format sheet.Format) cli.Settings {
	t.Helper()
	return cli.Settings{
		Output:      t.TempDir(),
		Format:      format,
		Catalog:     language.DefaultCatalog(),
		MaxAttempts: 1,
		Pacing:      pacing.Config{Policy: pacing.PolicyNone},
	}
}

func newTestProcessor(t *testing.T, settings cli.Settings, mock *testutil.MockTranslator) (*Processor, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	p, err := NewProcessor(settings, mock, zerolog.Nop(), &stdout, &stderr)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return p, &stdout, &stderr
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.csv")
	testutil.CreateTestFile(t, path, []byte(inputCSV))
	return path
}

func TestNewProcessor_InvalidSettings(t *testing.T) {
	settings := testSettings(t, sheet.CSV)
	settings.Pacing.Policy = "sometimes"
	if _, err := NewProcessor(settings, &testutil.MockTranslator{}, zerolog.Nop(), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown pacing policy")
	}

	settings = testSettings(t, sheet.CSV)
	settings.ETA = "psychic"
	if _, err := NewProcessor(settings, &testutil.MockTranslator{}, zerolog.Nop(), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown estimator")
	}
}

func TestProcessFile_AllLanguages(t *testing.T) {
	settings := testSettings(t, sheet.CSV)
	mock := &testutil.MockTranslator{}
	p, stdout, stderr := newTestProcessor(t, settings, mock)

	result, err := p.ProcessFile(context.Background(), writeInput(t))
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	wantPath := filepath.Join(settings.Output, "translated_simulation.csv")
	if result.OutputPath != wantPath {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, wantPath)
	}
	testutil.AssertFileExists(t, wantPath)

	out, err := sheet.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	wantCols := []string{
		"Scenario", "Prompt - English to Italian", "Prompt - English to German", "Prompt - English to French",
		"Translation - Italian", "Translation - German", "Translation - French",
	}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Errorf("columns = %v, want %v", out.Columns, wantCols)
	}
	if got := testutil.ColumnValues(t, out, "Translation - Italian"); !reflect.DeepEqual(got,
		[]string{"mock translation of Should we raise prices?", ""}) {
		t.Errorf("Italian = %v", got)
	}

	// 6 cells, one blank prompt
	if result.Stats.Total != 6 || result.Stats.Skipped != 1 || mock.CallCount() != 5 {
		t.Errorf("stats = %+v, calls = %d", result.Stats, mock.CallCount())
	}
	if !strings.Contains(stdout.String(), "Translated: 5") {
		t.Errorf("summary missing counts:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Translated 6 of 6 cells (100%)") {
		t.Errorf("progress missing final line:\n%s", stderr.String())
	}
}

func TestProcessFile_SelectionAndPreview(t *testing.T) {
	settings := testSettings(t, sheet.XLSX)
	settings.Languages = []string{"french"}
	settings.Preview = 10
	settings.Output = filepath.Join(t.TempDir(), "nested", "result.xlsx")

	mock := &testutil.MockTranslator{
		Errors: map[string]error{"Hire two engineers": apperrors.RateLimit(errors.New("429 too many requests"))},
	}
	p, stdout, _ := newTestProcessor(t, settings, mock)

	result, err := p.ProcessFile(context.Background(), writeInput(t))
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if result.OutputPath != settings.Output {
		t.Errorf("OutputPath = %q", result.OutputPath)
	}
	if result.Artifact.ContentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("ContentType = %q", result.Artifact.ContentType)
	}

	out, err := sheet.ReadFile(settings.Output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if out.HasColumn("Translation - German") {
		t.Error("unselected language was translated")
	}
	got := testutil.ColumnValues(t, out, "Translation - French")
	want := []string{"mock translation of Should we raise prices?", "[ERROR] 429 too many requests"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("French = %v, want %v", got, want)
	}

	s := stdout.String()
	for _, part := range []string{"Input preview:", "Translated preview:", "Failed: 1"} {
		if !strings.Contains(s, part) {
			t.Errorf("stdout missing %q:\n%s", part, s)
		}
	}
}

func TestProcessFile_FormatFailures(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		input     string
	}{
		{name: "unknown language", languages: []string{"Klingon"}, input: inputCSV},
		{name: "missing prompt column", input: "Prompt - English to Italian\nciao\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t, sheet.CSV)
			settings.Languages = tt.languages
			mock := &testutil.MockTranslator{}
			p, _, _ := newTestProcessor(t, settings, mock)

			path := filepath.Join(t.TempDir(), "in.csv")
			testutil.CreateTestFile(t, path, []byte(tt.input))

			_, err := p.ProcessFile(context.Background(), path)
			if !apperrors.IsFormat(err) {
				t.Fatalf("ProcessFile() error = %v, want format error", err)
			}
			if mock.CallCount() != 0 {
				t.Errorf("calls = %d, want 0", mock.CallCount())
			}
			testutil.AssertFileNotExists(t, filepath.Join(settings.Output, "translated_simulation.csv"))
		})
	}
}

func TestProcessFile_CancelledWritesPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := testSettings(t, sheet.CSV)
	mock := &testutil.MockTranslator{OnCall: func(string) { cancel() }}
	p, stdout, _ := newTestProcessor(t, settings, mock)

	result, err := p.ProcessFile(ctx, writeInput(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessFile() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("expected a partial result")
	}
	testutil.AssertFileExists(t, result.OutputPath)
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
	if !strings.Contains(stdout.String(), "Run cancelled after 1 of 6 cells") {
		t.Errorf("summary:\n%s", stdout.String())
	}
}

func TestPrintLanguages(t *testing.T) {
	var buf bytes.Buffer
	PrintLanguages(&buf, language.DefaultCatalog())

	out := buf.String()
	for _, name := range []string{"Italian", "German", "French", `"Prompt - English to German"`} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
}

func TestProcessFile_ArchivesPreviousOutput(t *testing.T) {
	settings := testSettings(t, sheet.CSV)
	settings.Archive = true

	previous := filepath.Join(settings.Output, "translated_simulation.csv")
	testutil.CreateTestFile(t, previous, []byte("old"))

	p, stdout, _ := newTestProcessor(t, settings, &testutil.MockTranslator{})
	if _, err := p.ProcessFile(context.Background(), writeInput(t)); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(settings.Output, "archive", "translated_simulation-*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("archived files = %v, %v", matches, err)
	}
	if !strings.Contains(stdout.String(), "Archived previous output") {
		t.Errorf("stdout:\n%s", stdout.String())
	}
	testutil.AssertFileExists(t, previous)
}
