// Package llm provides generation provider adapters.
// Clean Architecture: Adapters implementing ports.GenerationService.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"spendchat/internal/domain/ports"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"

	maxRetries = 3
	retryDelay = 5 * time.Second
)

// GeminiAdapter implements ports.GenerationService using the Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini generation adapter.
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini generation: missing API key")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiAdapter{client: client, model: model}, nil
}

// Generate produces a response for the prompt under the given sampling
// config, retrying rate-limit errors until the context runs out.
func (a *GeminiAdapter) Generate(ctx context.Context, prompt string, cfg ports.SamplingConfig) (string, error) {
	model := a.client.GenerativeModel(a.model)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetTopK(cfg.TopK)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			return collectText(resp)
		}
		lastErr = err

		if !isRateLimit(err) || attempt == maxRetries-1 {
			return "", err
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("retries exhausted: %w", lastErr)
}

// Close releases the underlying client.
func (a *GeminiAdapter) Close() error {
	return a.client.Close()
}

// collectText flattens the candidate parts into one answer string.
func collectText(resp *genai.GenerateContentResponse) (string, error) {
	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("generation response has no text")
	}
	return strings.Join(parts, "\n"), nil
}

// isRateLimit spots quota and rate-limit failures worth retrying.
func isRateLimit(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "quota") ||
		strings.Contains(s, "resource exhausted")
}
