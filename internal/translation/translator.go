package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

// ErrorMarkerPrefix starts every cell value written in place of a translation
const ErrorMarkerPrefix = "[ERROR]"

// DefaultSystemInstruction is the translator persona sent with every prompt
const DefaultSystemInstruction = "You are a culturally-aware professional business content translator."

// Provider names
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultAzureAPIVersion is the Azure OpenAI REST API version
const DefaultAzureAPIVersion = "2024-08-01-preview"

// Translator translates one prompt. Implementations never return an error:
// failures are carried inside the Result.
type Translator interface {
	Translate(ctx context.Context, prompt, systemInstruction string) Result
}

// Result is the outcome of one translation call
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the call failed
func (r Result) Failed() bool {
	return r.Err != nil
}

// String returns the value to store in the output cell: the translation or
// an error marker
func (r Result) String() string {
	if r.Err != nil {
		return ErrorMarker(r.Err)
	}
	return r.Text
}

// ErrorMarker formats err as "[ERROR] {details}"
func ErrorMarker(err error) string {
	return fmt.Sprintf("%s %s", ErrorMarkerPrefix, err.Error())
}

// IsErrorMarker reports whether a cell value is an error marker
func IsErrorMarker(s string) bool {
	return strings.HasPrefix(s, ErrorMarkerPrefix)
}

// Config holds everything a client needs. It is passed explicitly; there is
// no package-level client state.
type Config struct {
	Provider   string // "azure", "openai" or "gemini"
	APIKey     string
	Endpoint   string // Azure resource endpoint, or a base URL override
	APIVersion string // Azure only
	Model      string // model id, or the Azure deployment name

	Temperature float32
	MaxTokens   int
	CallTimeout time.Duration // 0 means no per-call timeout

	// BreakerThreshold opens the circuit after that many consecutive
	// failures. 0 disables the breaker.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration

	HTTPClient *http.Client
}

// DefaultConfig returns the reference request settings
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderAzure,
		APIVersion:     DefaultAzureAPIVersion,
		Temperature:    0.5,
		MaxTokens:      1000,
		BreakerTimeout: 30 * time.Second,
	}
}

// New creates the client for cfg.Provider
func New(ctx context.Context, cfg Config) (Translator, error) {
	switch cfg.Provider {
	case ProviderAzure, ProviderOpenAI, "":
		return NewOpenAIClient(cfg)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}
}

// OpenAIClientConfig builds the go-openai configuration for the azure and
// openai providers
func OpenAIClientConfig(cfg Config) (openai.ClientConfig, error) {
	if cfg.APIKey == "" {
		return openai.ClientConfig{}, fmt.Errorf("OpenAI API key is required")
	}

	var occ openai.ClientConfig
	switch cfg.Provider {
	case ProviderAzure, "":
		if cfg.Endpoint == "" {
			return openai.ClientConfig{}, fmt.Errorf("Azure OpenAI endpoint is required")
		}
		if cfg.Model == "" {
			return openai.ClientConfig{}, fmt.Errorf("Azure deployment name is required")
		}
		occ = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			occ.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Model
		occ.AzureModelMapperFunc = func(string) string {
			return deployment
		}
	case ProviderOpenAI:
		occ = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			occ.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
		}
	default:
		return openai.ClientConfig{}, fmt.Errorf("provider %s does not use the OpenAI API", cfg.Provider)
	}

	if cfg.HTTPClient != nil {
		occ.HTTPClient = cfg.HTTPClient
	}
	return occ, nil
}

// OpenAIClient translates through the chat completions API of OpenAI or
// Azure OpenAI
type OpenAIClient struct {
	client *openai.Client
	config Config
	guard  *guard
}

// NewOpenAIClient creates a client for the azure or openai provider
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	occ, err := OpenAIClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(occ),
		config: cfg,
		guard:  newGuard("openai", cfg),
	}, nil
}

// Translate sends a system+user message pair and returns the trimmed first
// choice. It makes exactly one attempt.
func (c *OpenAIClient) Translate(ctx context.Context, prompt, systemInstruction string) Result {
	if strings.TrimSpace(prompt) == "" {
		return Result{Err: apperrors.BadRequest(errors.New("prompt is empty"))}
	}
	if systemInstruction == "" {
		systemInstruction = DefaultSystemInstruction
	}

	if c.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CallTimeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	text, err := c.guard.run(func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", apperrors.Validation(errors.New("no completion choices returned"))
		}
		choice := resp.Choices[0]
		text := strings.TrimSpace(choice.Message.Content)
		if text == "" {
			return "", apperrors.Validation(fmt.Errorf("empty completion (finish_reason %s)", choice.FinishReason))
		}
		return text, nil
	})
	if err != nil {
		return Result{Err: err}
	}
	return Result{Text: text}
}
