// Package embedding provides embedding provider adapters.
// Clean Architecture: Adapters implementing ports.EmbeddingService.
// The same adapter instance must embed both documents and queries so the
// vectors live in one embedding space.
package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "text-embedding-004"

// GeminiAdapter implements ports.EmbeddingService using the Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGeminiAdapter creates a Gemini embedding adapter.
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding: missing API key")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  client.EmbeddingModel(model),
	}, nil
}

// Embed generates a unit-normalized embedding for a single text.
func (a *GeminiAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}
	return Normalize(resp.Embedding.Values), nil
}

// EmbedBatch generates embeddings for multiple texts in one provider call.
func (a *GeminiAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := a.model.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	resp, err := a.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		out[i] = Normalize(e.Values)
	}
	return out, nil
}

// Close releases the underlying client.
func (a *GeminiAdapter) Close() error {
	return a.client.Close()
}
