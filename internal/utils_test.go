package internal

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"translated_simulation.xlsx", "translated_simulation.xlsx"},
		{"my file (1).csv", "my_file__1_.csv"},
		{"a/b\\c", "a_b_c"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out.xlsx", "xlsx"},
		{"OUT.XLSX", "xlsx"},
		{"/tmp/data.csv", "csv"},
		{"export.sqlite", "sqlite"},
		{"export.db", "sqlite"},
		{"notes.txt", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
