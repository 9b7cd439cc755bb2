package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/pacing"
	"codeberg.org/snonux/polyglot/internal/sheet"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Settings is the resolved configuration of a run: flags first, then the
// config file and POLYGLOT_* variables, then defaults
type Settings struct {
	Output    string
	Format    sheet.Format
	Archive   bool
	Languages []string
	Catalog   *language.Catalog
	Preview   int
	LogLevel  string

	Provider          string
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
	MaxAttempts       int
	BreakerThreshold  uint32
	CallTimeout       time.Duration

	Pacing pacing.Config
	ETA    string
}

func setDefaults() {
	defaults := translation.DefaultConfig()
	viper.SetDefault("translation.temperature", defaults.Temperature)
	viper.SetDefault("translation.max_tokens", defaults.MaxTokens)
	viper.SetDefault("translation.system_instruction", translation.DefaultSystemInstruction)
	viper.SetDefault("languages.catalog", language.DefaultCodes)
	viper.SetDefault("pacing.max_delay", 0)
}

// ReadSettings resolves the run settings from v
func ReadSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		Output:            v.GetString("output.path"),
		Archive:           v.GetBool("output.archive"),
		Languages:         v.GetStringSlice("languages.selected"),
		Preview:           v.GetInt("preview.rows"),
		LogLevel:          v.GetString("log.level"),
		Provider:          strings.ToLower(v.GetString("translation.provider")),
		Model:             v.GetString("translation.model"),
		Temperature:       float32(v.GetFloat64("translation.temperature")),
		MaxTokens:         v.GetInt("translation.max_tokens"),
		SystemInstruction: v.GetString("translation.system_instruction"),
		MaxAttempts:       v.GetInt("translation.retries") + 1,
		BreakerThreshold:  v.GetUint32("translation.breaker_threshold"),
		CallTimeout:       v.GetDuration("translation.call_timeout"),
		Pacing: pacing.Config{
			Policy:   v.GetString("pacing.policy"),
			Delay:    v.GetDuration("pacing.delay"),
			Burst:    v.GetInt("pacing.burst"),
			MaxDelay: v.GetDuration("pacing.max_delay"),
		},
		ETA: v.GetString("progress.eta"),
	}

	if s.Provider == "" {
		s.Provider = translation.ProviderAzure
	}
	if s.MaxAttempts < 1 {
		return Settings{}, fmt.Errorf("retries must not be negative")
	}
	if s.Preview < 0 {
		return Settings{}, fmt.Errorf("preview must not be negative")
	}

	// An output file extension decides the format unless one was requested
	format := v.GetString("output.format")
	if !v.IsSet("output.format") || format == "" {
		if byExt := internal.FormatFromPath(s.Output); byExt != "" {
			format = byExt
		}
	}
	f, err := sheet.ParseFormat(format)
	if err != nil {
		return Settings{}, err
	}
	s.Format = f

	catalog, err := language.NewCatalog(v.GetStringSlice("languages.catalog"))
	if err != nil {
		return Settings{}, err
	}
	s.Catalog = catalog

	return s, nil
}

// SelectedLanguages resolves the language selection against the catalog.
// No selection means the whole catalog.
func (s Settings) SelectedLanguages() ([]language.Language, error) {
	if len(s.Languages) == 0 {
		return s.Catalog.Languages(), nil
	}
	return s.Catalog.Select(s.Languages)
}

// TranslationConfig builds the client configuration for the selected provider
func (s Settings) TranslationConfig(creds Credentials) (translation.Config, error) {
	cfg := translation.DefaultConfig()
	cfg.Provider = s.Provider
	cfg.Model = s.Model
	cfg.Temperature = s.Temperature
	cfg.MaxTokens = s.MaxTokens
	cfg.CallTimeout = s.CallTimeout
	cfg.BreakerThreshold = s.BreakerThreshold

	switch s.Provider {
	case translation.ProviderAzure:
		cfg.APIKey = creds.AzureAPIKey
		cfg.Endpoint = creds.AzureEndpoint
		cfg.APIVersion = creds.AzureAPIVersion
		if cfg.Model == "" {
			cfg.Model = creds.AzureDeployment
		}
	case translation.ProviderOpenAI:
		cfg.APIKey = creds.OpenAIAPIKey
		cfg.Endpoint = creds.OpenAIBaseURL
	case translation.ProviderGemini:
		cfg.APIKey = creds.GeminiAPIKey
	default:
		return translation.Config{}, fmt.Errorf("unknown translation provider: %s", s.Provider)
	}

	return cfg, nil
}
