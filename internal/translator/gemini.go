package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiTranslator struct {
	apiKey string
	model  string
}

func (p *geminiTranslator) Name() string {
	return "gemini"
}

func (p *geminiTranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	userContent, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("encode sentences: %w", err)
	}
	prompt := systemPrompt(targetLang) + "\n\nInput:\n" + string(userContent)
	resp, err := client.Models.GenerateContent(
		ctx,
		p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	translated, err := parseStringArray(strings.TrimSpace(resp.Text()))
	if err != nil {
		return nil, err
	}
	if err := checkSize(len(translated), len(texts)); err != nil {
		return nil, err
	}
	return translated, nil
}

func createGeminiFactory(model string, args interface{}) (Translator, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiTranslator{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
	}, nil
}

func init() {
	Register("gemini", createGeminiFactory)
}
