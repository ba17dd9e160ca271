// Package usecases - query.go handles retrieval and answer synthesis.
package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"spendchat/internal/domain/entities"
	"spendchat/internal/domain/ports"
)

const (
	// DefaultTopK is how many chunks are retrieved per query.
	DefaultTopK = 30

	// defaultGenerateTimeout bounds one generation provider call.
	defaultGenerateTimeout = 60 * time.Second
)

// DefaultSampling favors factual, low-variance responses.
func DefaultSampling() ports.SamplingConfig {
	return ports.SamplingConfig{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 512,
	}
}

// Query runs the per-request path: embed the question, retrieve the nearest
// chunks, compose the prompt and synthesize an answer. Requests are
// independent; the only shared state is the read-only index behind the store.
type Query struct {
	embedder  ports.EmbeddingService
	store     ports.VectorStore
	generator ports.GenerationService
	topK      int
	timeout   time.Duration
	sampling  ports.SamplingConfig
}

// NewQuery creates a Query use case with injected dependencies.
func NewQuery(
	embedder ports.EmbeddingService,
	store ports.VectorStore,
	generator ports.GenerationService,
	topK int,
	timeout time.Duration,
) *Query {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &Query{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		timeout:   timeout,
		sampling:  DefaultSampling(),
	}
}

// Retrieve embeds the query text with the same provider used at build time
// and returns the top-k nearest chunks in similarity order. An embedding
// failure surfaces as a retrieval failure rather than stale results.
func (q *Query) Retrieve(ctx context.Context, text string) ([]entities.RetrievedChunk, error) {
	vector, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", entities.ErrEmbedding, err)
	}

	results, err := q.store.Search(ctx, vector, q.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: searching store: %v", entities.ErrIndex, err)
	}
	return results, nil
}

// Answer runs the full query path and always returns a structurally valid
// Answer once retrieval has succeeded, degrading on generation failure.
func (q *Query) Answer(ctx context.Context, query string, history []entities.ConversationTurn) (*entities.Answer, error) {
	results, err := q.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(results))
	sources := make([]entities.ChunkMetadata, len(results))
	for i, r := range results {
		contexts[i] = r.Document
		sources[i] = r.Metadata
	}

	prompt := ComposePrompt(query, contexts, history)
	return q.Synthesize(ctx, prompt, contexts, sources), nil
}

// Synthesize sends the prompt to the generation provider under a bounded
// timeout. Provider failures are never propagated: the caller gets an Answer
// whose text explains the failure and whose sources and contexts are empty.
func (q *Query) Synthesize(ctx context.Context, prompt string, contexts []string, sources []entities.ChunkMetadata) *entities.Answer {
	genCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	text, err := q.generator.Generate(genCtx, prompt, q.sampling)
	if err != nil {
		log.Printf("[ERROR] %v: %v", entities.ErrGeneration, err)
		return &entities.Answer{
			Text: fmt.Sprintf("Sorry, I encountered an error while generating the answer: %v", err),
		}
	}

	return &entities.Answer{
		Text:     text,
		Sources:  sources,
		Contexts: contexts,
	}
}
