// Package translator abstracts the external machine-translation
// provider. Implementations take a bounded list of source sentences and
// return the translated list in the same order and length.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable means the provider is not configured or reachable.
	ErrUnavailable = errors.New("translator unavailable")
	// ErrSizeMismatch means the provider returned a list whose length
	// differs from the input; the result is unusable as a whole.
	ErrSizeMismatch = errors.New("translation size mismatch")
	// ErrBadPayload means the provider response could not be parsed as a
	// JSON array of strings.
	ErrBadPayload = errors.New("malformed translation payload")
)

type Translator interface {
	Name() string
	Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}

type Factory func(model string, args interface{}) (Translator, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func New(name string, model string, args interface{}) (Translator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("translator.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported translator provider: %s", name)
	}
	return factory(model, args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("translator config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode translator config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode translator config: %w", err)
	}
	return nil
}

func systemPrompt(targetLang string) string {
	return fmt.Sprintf(
		"You are a translator. Translate each element of the input JSON array into %s. "+
			"The response MUST be a JSON array of strings with the same length and order as the input. "+
			"Do NOT include any additional text, explanations, or markdown formatting outside the JSON array.",
		targetLang,
	)
}

// parseStringArray decodes the model output as a JSON array of strings,
// tolerating a fenced code block wrapper.
func parseStringArray(content string) ([]string, error) {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: null array", ErrBadPayload)
	}
	return out, nil
}

func checkSize(got, want int) error {
	if got != want {
		return fmt.Errorf("%w: expected=%d actual=%d", ErrSizeMismatch, want, got)
	}
	return nil
}
