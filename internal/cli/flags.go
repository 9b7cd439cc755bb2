package cli

import (
	"time"

	"codeberg.org/snonux/polyglot/internal/pacing"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	EnvFile       string
	Output        string
	Format        string
	Languages     []string
	Preview       int
	ListLanguages bool
	ListModels    bool
	Archive       bool
	LogLevel      string

	// Translation flags
	Provider         string
	Model            string
	Retries          int
	BreakerThreshold uint32
	CallTimeout      time.Duration

	// Pacing flags
	Pacing string
	Delay  time.Duration
	Burst  int

	// Progress flags
	ETA string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		EnvFile:  ".env",
		Format:   "xlsx",
		LogLevel: "warn",
		Provider: translation.ProviderAzure,
		Pacing:   pacing.PolicyFixed,
		Delay:    pacing.DefaultDelay,
		Burst:    1,
		ETA:      "cumulative",
	}
}
