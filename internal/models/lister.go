package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// Lister handles listing models visible to the configured credentials
type Lister struct {
	client *openai.Client
}

// NewLister creates a model lister for the azure or openai provider
func NewLister(cfg translation.Config) (*Lister, error) {
	occ, err := translation.OpenAIClientConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot list models: %w", err)
	}
	return &Lister{client: openai.NewClientWithConfig(occ)}, nil
}

// ListAvailableModels prints the chat models usable for translation and
// counts the rest
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	chatModels, otherModels := categorize(models.Models)

	fmt.Fprintln(w, "Chat/Translation Models:")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, model := range chatModels {
		fmt.Fprintf(w, "  %s\n", model)
	}
	if len(otherModels) > 0 {
		fmt.Fprintf(w, "\n%d other models (audio, image, embedding) not usable for translation\n", len(otherModels))
	}

	return nil
}

func categorize(models []openai.Model) (chat, other []string) {
	for _, model := range models {
		id := model.ID
		switch {
		case strings.Contains(id, "tts"), strings.Contains(id, "audio"),
			strings.Contains(id, "dall-e"), strings.Contains(id, "embedding"),
			strings.Contains(id, "whisper"):
			other = append(other, id)
		case strings.Contains(id, "gpt"), strings.Contains(id, "chat"),
			strings.HasPrefix(id, "o1"), strings.HasPrefix(id, "o3"), strings.HasPrefix(id, "o4"):
			chat = append(chat, id)
		default:
			other = append(other, id)
		}
	}

	sort.Strings(chat)
	sort.Strings(other)
	return chat, other
}
