package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal/sheet"
)

// parseArgs builds the root command, parses args and resolves settings
func parseArgs(t *testing.T, args ...string) Settings {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error: %v", args, err)
	}
	setDefaults()

	s, err := ReadSettings(viper.GetViper())
	if err != nil {
		t.Fatalf("ReadSettings() error: %v", err)
	}
	return s
}

func TestCreateRootCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "polyglot [input-file]" {
		t.Errorf("Expected Use to be 'polyglot [input-file]', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "translator") {
		t.Errorf("Unexpected Short description %q", cmd.Short)
	}

	persistent := map[string]bool{"config": true, "env": true, "log-level": true}
	for _, name := range []string{
		"config", "env", "log-level", "output", "format", "languages", "preview",
		"archive", "list-languages", "list-models", "provider", "model", "retries",
		"breaker-threshold", "call-timeout", "pacing", "delay", "burst", "eta",
	} {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if persistent[name] {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	if f := cmd.Flags().ShorthandLookup("l"); f == nil || f.Name != "languages" {
		t.Error("Expected -l to be the shorthand of --languages")
	}
	if f := cmd.Flags().ShorthandLookup("o"); f == nil || f.Name != "output" {
		t.Error("Expected -o to be the shorthand of --output")
	}
}

func TestReadSettings_Defaults(t *testing.T) {
	s := parseArgs(t)

	if s.Format != sheet.XLSX {
		t.Errorf("Format = %q, want xlsx", s.Format)
	}
	if s.Provider != "azure" {
		t.Errorf("Provider = %q, want azure", s.Provider)
	}
	if s.Temperature != 0.5 || s.MaxTokens != 1000 {
		t.Errorf("Temperature/MaxTokens = %v/%d, want 0.5/1000", s.Temperature, s.MaxTokens)
	}
	if s.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", s.MaxAttempts)
	}
	if s.Pacing.Policy != "fixed" || s.Pacing.Delay != 1500*time.Millisecond {
		t.Errorf("Pacing = %+v", s.Pacing)
	}
	if s.BreakerThreshold != 0 {
		t.Errorf("BreakerThreshold = %d, want 0", s.BreakerThreshold)
	}
	if s.SystemInstruction != "You are a culturally-aware professional business content translator." {
		t.Errorf("SystemInstruction = %q", s.SystemInstruction)
	}

	langs, err := s.SelectedLanguages()
	if err != nil {
		t.Fatalf("SelectedLanguages() error = %v", err)
	}
	var names []string
	for _, l := range langs {
		names = append(names, l.Name)
	}
	if !reflect.DeepEqual(names, []string{"Italian", "German", "French"}) {
		t.Errorf("default selection = %v", names)
	}
}

func TestReadSettings_Flags(t *testing.T) {
	s := parseArgs(t,
		"-l", "French,German", "--retries", "2", "--pacing", "adaptive", "--delay", "200ms",
		"--breaker-threshold", "3", "--call-timeout", "10s", "--provider", "OpenAI",
		"--eta", "smoothed", "--preview", "10", "-o", "out/result.csv")

	if !reflect.DeepEqual(s.Languages, []string{"French", "German"}) {
		t.Errorf("Languages = %v", s.Languages)
	}
	if s.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", s.MaxAttempts)
	}
	if s.Pacing.Policy != "adaptive" || s.Pacing.Delay != 200*time.Millisecond {
		t.Errorf("Pacing = %+v", s.Pacing)
	}
	if s.BreakerThreshold != 3 || s.CallTimeout != 10*time.Second {
		t.Errorf("breaker/timeout = %d/%v", s.BreakerThreshold, s.CallTimeout)
	}
	if s.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", s.Provider)
	}
	if s.ETA != "smoothed" || s.Preview != 10 {
		t.Errorf("ETA/Preview = %q/%d", s.ETA, s.Preview)
	}
	// The output extension decides the format when --format is not given
	if s.Format != sheet.CSV {
		t.Errorf("Format = %q, want csv", s.Format)
	}
}

func TestReadSettings_ExplicitFormatWins(t *testing.T) {
	s := parseArgs(t, "-o", "result.csv", "--format", "sqlite")
	if s.Format != sheet.SQLite {
		t.Errorf("Format = %q, want sqlite", s.Format)
	}
}

func TestReadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "format", args: []string{"--format", "pdf"}},
		{name: "retries", args: []string{"--retries=-1"}},
		{name: "preview", args: []string{"--preview=-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			cmd := CreateRootCommand(NewFlags())
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}
			setDefaults()
			if _, err := ReadSettings(viper.GetViper()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "polyglot.yaml")
	content := `languages:
  catalog: [es, de, ja]
  selected: [Japanese]
pacing:
  policy: token-bucket
translation:
  temperature: 0.2
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cmd := CreateRootCommand(NewFlags())
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	InitConfig(cfgPath)

	t.Setenv("POLYGLOT_PACING_DELAY", "3s")

	s, err := ReadSettings(viper.GetViper())
	if err != nil {
		t.Fatalf("ReadSettings() error = %v", err)
	}

	if got := s.Catalog.Names(); !reflect.DeepEqual(got, []string{"Spanish", "German", "Japanese"}) {
		t.Errorf("catalog = %v", got)
	}
	langs, err := s.SelectedLanguages()
	if err != nil || len(langs) != 1 || langs[0].Name != "Japanese" {
		t.Errorf("selection = %v, %v", langs, err)
	}
	if s.Pacing.Policy != "token-bucket" {
		t.Errorf("policy = %q, want token-bucket", s.Pacing.Policy)
	}
	if s.Pacing.Delay != 3*time.Second {
		t.Errorf("delay = %v, want 3s from POLYGLOT_PACING_DELAY", s.Pacing.Delay)
	}
	if s.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", s.Temperature)
	}
}

func TestSelectedLanguages_Unknown(t *testing.T) {
	s := parseArgs(t, "-l", "Klingon")
	if _, err := s.SelectedLanguages(); err == nil {
		t.Error("Expected error for unknown language")
	}
}
