package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/snonux/polyglot/internal/translation"
)

func TestNewLister_MissingCredentials(t *testing.T) {
	cfg := translation.DefaultConfig()
	cfg.Provider = translation.ProviderOpenAI

	if _, err := NewLister(cfg); err == nil {
		t.Fatal("Expected error for missing API key")
	}

	cfg.Provider = translation.ProviderGemini
	cfg.APIKey = "key"
	if _, err := NewLister(cfg); err == nil {
		t.Fatal("Expected error for the gemini provider")
	}
}

func TestListAvailableModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model"},
			{"id":"tts-1","object":"model"},
			{"id":"gpt-4o","object":"model"},
			{"id":"dall-e-3","object":"model"}
		]}`))
	}))
	defer server.Close()

	cfg := translation.DefaultConfig()
	cfg.Provider = translation.ProviderOpenAI
	cfg.APIKey = "test-key"
	cfg.Endpoint = server.URL + "/v1"

	lister, err := NewLister(cfg)
	if err != nil {
		t.Fatalf("NewLister() error = %v", err)
	}

	var buf bytes.Buffer
	if err := lister.ListAvailableModels(context.Background(), &buf); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "  gpt-4o\n  gpt-4o-mini\n") {
		t.Errorf("chat models not listed in order:\n%s", out)
	}
	if strings.Contains(out, "  tts-1") {
		t.Errorf("tts model listed as chat model:\n%s", out)
	}
	if !strings.Contains(out, "2 other models") {
		t.Errorf("missing other model count:\n%s", out)
	}
}

func TestCategorize(t *testing.T) {
	chat, other := categorize(nil)
	if len(chat) != 0 || len(other) != 0 {
		t.Errorf("categorize(nil) = %v, %v", chat, other)
	}
}
