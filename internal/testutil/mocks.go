package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// MockTranslator mocks the translation client. Responses are keyed by prompt.
type MockTranslator struct {
	mu sync.Mutex

	Translations map[string]string
	Errors       map[string]error
	// FailFirst makes the first N calls for a prompt fail with a transient error
	FailFirst map[string]int
	// OnCall runs before each call is answered
	OnCall func(prompt string)

	Calls        []string
	Instructions []string
}

// Translate implements translation.Translator
func (m *MockTranslator) Translate(ctx context.Context, prompt, systemInstruction string) translation.Result {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.Instructions = append(m.Instructions, systemInstruction)
	hook := m.OnCall
	m.mu.Unlock()

	if hook != nil {
		hook(prompt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n := m.FailFirst[prompt]; n > 0 {
		m.FailFirst[prompt] = n - 1
		return translation.Result{Err: apperrors.Transient(errors.New("temporary upstream failure"))}
	}

	if err, ok := m.Errors[prompt]; ok {
		return translation.Result{Err: err}
	}

	if text, ok := m.Translations[prompt]; ok {
		return translation.Result{Text: text}
	}

	// Default mock translation
	return translation.Result{Text: fmt.Sprintf("mock translation of %s", prompt)}
}

// CallCount returns how many calls were made
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordingPacer counts pacing calls without waiting
type RecordingPacer struct {
	mu        sync.Mutex
	Throttles int
	Observed  []error
}

// Throttle implements pacing.Policy
func (p *RecordingPacer) Throttle(ctx context.Context) error {
	p.mu.Lock()
	p.Throttles++
	p.mu.Unlock()
	return ctx.Err()
}

// Observe implements pacing.Policy
func (p *RecordingPacer) Observe(err error) {
	p.mu.Lock()
	p.Observed = append(p.Observed, err)
	p.mu.Unlock()
}
