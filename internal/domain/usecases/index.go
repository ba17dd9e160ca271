// Package usecases - index.go builds the embedding index.
package usecases

import (
	"context"
	"fmt"
	"log"
	"sync"

	"spendchat/internal/domain/entities"
	"spendchat/internal/domain/ports"
)

// defaultBatchSize bounds one embedding provider call during a build.
const defaultBatchSize = 16

// Indexer embeds chunk texts and persists them in the vector store.
// Build is idempotent: it keeps an explicit completion flag and consults the
// store count once, so an already-populated store is adopted instead of
// re-embedded. Only Rebuild re-embeds, and it clears the store first.
type Indexer struct {
	embedder  ports.EmbeddingService
	store     ports.VectorStore
	batchSize int

	mu    sync.Mutex
	built bool
}

// NewIndexer creates an Indexer with injected dependencies.
func NewIndexer(embedder ports.EmbeddingService, store ports.VectorStore, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

// Build populates the store from the chunks unless it already holds entries.
// Errors are all-or-nothing: partial state is cleared before returning.
func (ix *Indexer) Build(ctx context.Context, chunks []entities.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.built {
		return nil
	}

	count, err := ix.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: counting entries: %v", entities.ErrIndex, err)
	}
	if count > 0 {
		log.Printf("[INFO] vector store already holds %d entries, skipping embedding", count)
		ix.built = true
		return nil
	}

	if err := ix.index(ctx, chunks); err != nil {
		if cerr := ix.store.Clear(ctx); cerr != nil {
			log.Printf("[WARN] clearing partial index: %v", cerr)
		}
		return err
	}

	ix.built = true
	log.Printf("[INFO] embedded and stored %d chunks", len(chunks))
	return nil
}

// Rebuild clears the store and embeds everything again.
// The caller must guarantee no concurrent readers while it runs.
func (ix *Indexer) Rebuild(ctx context.Context, chunks []entities.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.built = false
	if err := ix.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clearing store: %v", entities.ErrIndex, err)
	}

	if err := ix.index(ctx, chunks); err != nil {
		if cerr := ix.store.Clear(ctx); cerr != nil {
			log.Printf("[WARN] clearing partial index: %v", cerr)
		}
		return err
	}

	ix.built = true
	log.Printf("[INFO] rebuilt index with %d chunks", len(chunks))
	return nil
}

// Count reports how many entries the store holds.
func (ix *Indexer) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx)
}

// index embeds chunk texts in batches and adds the entries to the store.
func (ix *Indexer) index(ctx context.Context, chunks []entities.Chunk) error {
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embedding batch at %d: %v", entities.ErrEmbedding, start, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: got %d vectors for %d texts", entities.ErrEmbedding, len(vectors), len(batch))
		}

		entries := make([]entities.IndexEntry, len(batch))
		for i, c := range batch {
			entries[i] = entities.IndexEntry{
				ID:       c.ID,
				Vector:   vectors[i],
				Document: c.Text,
				Metadata: c.Metadata,
			}
		}

		if err := ix.store.Add(ctx, entries); err != nil {
			return fmt.Errorf("%w: storing batch at %d: %v", entities.ErrIndex, start, err)
		}
	}
	return nil
}
