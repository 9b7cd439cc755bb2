package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArchiveExisting(t *testing.T) {
	tmpDir := t.TempDir()
	output := filepath.Join(tmpDir, "translated_simulation.xlsx")
	if err := os.WriteFile(output, []byte("previous run"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	now := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	archived, err := ArchiveExisting(output, now)
	if err != nil {
		t.Fatalf("ArchiveExisting failed: %v", err)
	}

	want := filepath.Join(tmpDir, "archive", "translated_simulation-20260314-092653.xlsx")
	if archived != want {
		t.Errorf("archived to %s, want %s", archived, want)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("Output file still exists after archiving")
	}
	data, err := os.ReadFile(archived)
	if err != nil || string(data) != "previous run" {
		t.Errorf("archived content = %q, %v", data, err)
	}

	// A second archive within the same second gets a unique name
	if err := os.WriteFile(output, []byte("second run"), 0644); err != nil {
		t.Fatal(err)
	}
	second, err := ArchiveExisting(output, now)
	if err != nil {
		t.Fatalf("ArchiveExisting failed: %v", err)
	}
	if second == archived {
		t.Error("second archive overwrote the first")
	}
	if filepath.Base(second) != "translated_simulation-20260314-092653.589000.xlsx" {
		t.Errorf("second archive name = %s", filepath.Base(second))
	}
}

func TestArchiveExisting_Missing(t *testing.T) {
	archived, err := ArchiveExisting(filepath.Join(t.TempDir(), "nothing.csv"), time.Now())
	if err != nil || archived != "" {
		t.Errorf("ArchiveExisting() = %q, %v; want nothing", archived, err)
	}
}

func TestArchiveExisting_Directory(t *testing.T) {
	if _, err := ArchiveExisting(t.TempDir(), time.Now()); err == nil {
		t.Error("Expected error for a directory")
	}
}

func TestArchiveExisting_SanitizesName(t *testing.T) {
	tmpDir := t.TempDir()
	output := filepath.Join(tmpDir, "final (v2).csv")
	if err := os.WriteFile(output, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	archived, err := ArchiveExisting(output, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("ArchiveExisting failed: %v", err)
	}
	if filepath.Base(archived) != "final__v2_-20260102-030405.csv" {
		t.Errorf("archived name = %s", filepath.Base(archived))
	}
}
