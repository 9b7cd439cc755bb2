package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

// DefaultGeminiModel is used when no model is configured for the gemini provider
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient translates through the Gemini generateContent API
type GeminiClient struct {
	client *genai.Client
	config Config
	guard  *guard
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	if cfg.HTTPClient != nil {
		cc.HTTPClient = cfg.HTTPClient
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: cfg,
		guard:  newGuard("gemini", cfg),
	}, nil
}

// Translate sends the prompt with the system instruction and returns the
// trimmed text of the first candidate. It makes exactly one attempt.
func (c *GeminiClient) Translate(ctx context.Context, prompt, systemInstruction string) Result {
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

	gcc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.config.Temperature),
		MaxOutputTokens:   int32(c.config.MaxTokens),
	}

	text, err := c.guard.run(func() (string, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), gcc)
		if err != nil {
			return "", classifyGeminiError(err)
		}
		if resp == nil || len(resp.Candidates) == 0 {
			return "", apperrors.Validation(errors.New("no candidates returned"))
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", apperrors.Validation(fmt.Errorf("empty completion (finish_reason %s)", resp.Candidates[0].FinishReason))
		}
		return text, nil
	})
	if err != nil {
		return Result{Err: err}
	}
	return Result{Text: text}
}
