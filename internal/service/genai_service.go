package service

import (
	"ai_sensei_backend/internal/config"
	"ai_sensei_backend/internal/util"
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator is the single call contract every feature goes through: one
// prompt, an optional response schema, an optional system instruction.
// Centralizing model access here keeps prompt/error discipline in one
// place and lets the provider be swapped without touching callers.
//
// When schema is non-nil the returned string is JSON shaped by the
// provider contract — it is NOT validated locally; callers parse it and
// treat a parse failure as ErrGenerationMalformed. Calls are billed and
// rate-limited upstream: no caching, no retries, no idempotence.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema, system string) (string, error)
}

// GeminiService implements Generator on the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string, schema *genai.Schema, system string) (string, error) {
	cfg := &genai.GenerateContentConfig{}

	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no candidates in response", util.ErrGenerationFailed)
	}

	return text, nil
}

func (s *GeminiService) ModelID() string {
	return s.model
}
