// Package app wires the pipeline into one explicitly constructed context
// object: created once at startup, held read-only afterwards, and passed
// into every request path instead of hiding state in package globals.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"spendchat/internal/domain/entities"
	"spendchat/internal/domain/ports"
	"spendchat/internal/domain/usecases"
)

// Stats summarizes the clean records behind the index.
type Stats struct {
	Records         int
	TotalSpendUSD   float64
	TotalQuantityKG float64
	AvgPricePerKG   float64
}

// Options tune the pipeline; zero values fall back to use-case defaults.
type Options struct {
	TopK            int
	EmbedBatchSize  int
	GenerateTimeout time.Duration
}

// App owns the pipeline. The RWMutex is the reader barrier: queries hold the
// read lock, so a rebuild (write lock) can never expose a partially
// populated index to an in-flight query.
type App struct {
	mu sync.RWMutex

	source     ports.RecordSource
	normalizer *usecases.Normalizer
	builder    *usecases.ChunkBuilder
	indexer    *usecases.Indexer
	query      *usecases.Query

	stats Stats
}

// New constructs the pipeline from its collaborators.
func New(
	source ports.RecordSource,
	embedder ports.EmbeddingService,
	store ports.VectorStore,
	generator ports.GenerationService,
	opts Options,
) *App {
	return &App{
		source:     source,
		normalizer: usecases.NewNormalizer(),
		builder:    usecases.NewChunkBuilder(),
		indexer:    usecases.NewIndexer(embedder, store, opts.EmbedBatchSize),
		query:      usecases.NewQuery(embedder, store, generator, opts.TopK, opts.GenerateTimeout),
	}
}

// BuildIndex loads, normalizes and chunks the source, then builds the index.
// It must complete before any query is served; queries block on the lock
// until it returns. A populated store makes this a fast no-op.
func (a *App) BuildIndex(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	chunks, records, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	a.stats = computeStats(records)

	return a.indexer.Build(ctx, chunks)
}

// Rebuild re-reads the source and re-embeds everything under the write
// lock, so readers see either the old or the new index, never a mix.
func (a *App) Rebuild(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	chunks, records, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	a.stats = computeStats(records)

	return a.indexer.Rebuild(ctx, chunks)
}

// Answer runs the query path against the built index. Safe for unbounded
// concurrent callers; requests share nothing but the read-only index.
func (a *App) Answer(ctx context.Context, query string, history []entities.ConversationTurn) (*entities.Answer, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.query.Answer(ctx, query, history)
}

// Stats returns the summary computed at the last (re)build.
func (a *App) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// prepare runs the build-side pipeline: source -> normalizer -> chunks.
func (a *App) prepare(ctx context.Context) ([]entities.Chunk, []entities.CleanRecord, error) {
	table, err := a.source.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	records, err := a.normalizer.Normalize(table)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] normalized %d of %d source rows", len(records), len(table.Rows))

	return a.builder.Build(records), records, nil
}

func computeStats(records []entities.CleanRecord) Stats {
	s := Stats{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	var priceSum float64
	for _, r := range records {
		s.TotalSpendUSD += r.SpendUSD
		s.TotalQuantityKG += r.QuantityKG
		priceSum += r.PricePerKG
	}
	s.AvgPricePerKG = priceSum / float64(len(records))
	return s
}
