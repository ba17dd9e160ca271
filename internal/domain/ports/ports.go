// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"spendchat/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
// Implementations must return unit-normalized vectors of a fixed dimension,
// deterministic for a given model and input. The same implementation must be
// used for documents and queries or similarity comparisons are invalid.
type EmbeddingService interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SamplingConfig bounds the generation provider's output.
type SamplingConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// GenerationService produces text from a language model.
type GenerationService interface {
	// Generate produces a response for the prompt under the given sampling config.
	Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
}

// VectorStore persists index entries and queries them by cosine similarity.
// After a build completes the store is treated as immutable and is safe for
// unbounded concurrent readers; writes require external coordination.
type VectorStore interface {
	// Add persists entries. Entries within one call are applied in order.
	Add(ctx context.Context, entries []entities.IndexEntry) error

	// Search returns up to topK entries ranked by descending cosine
	// similarity to vector. Ties keep the store's native return order.
	Search(ctx context.Context, vector []float32, topK int) ([]entities.RetrievedChunk, error)

	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries. Used by forced rebuilds only.
	Clear(ctx context.Context) error
}

// RecordSource loads the raw tabular procurement data.
type RecordSource interface {
	// Load reads the full table: header plus all rows, unvalidated.
	Load(ctx context.Context) (*entities.Table, error)
}
