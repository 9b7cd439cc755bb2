package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// Credentials are read from the environment only
type Credentials struct {
	AzureAPIKey     string `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint   string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureDeployment string `envconfig:"AZURE_DEPLOYMENT_NAME"`
	AzureAPIVersion string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-08-01-preview"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
}

// LoadEnvFile loads variables from a .env file without overriding the
// environment. A missing file is only an error when required is set.
func LoadEnvFile(path string, required bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// LoadCredentials reads the API credentials from the environment
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	if creds.AzureAPIVersion == "" {
		creds.AzureAPIVersion = translation.DefaultAzureAPIVersion
	}
	return creds, nil
}
