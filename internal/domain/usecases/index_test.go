package usecases

import (
	"context"
	"errors"
	"testing"

	"spendchat/internal/domain/entities"
)

// mockEmbedder implements ports.EmbeddingService for testing.
type mockEmbedder struct {
	embedFn   func(text string) ([]float32, error)
	batchErr  error
	calls     int
	batchSize []int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.batchSize = append(m.batchSize, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// mockStore implements ports.VectorStore for testing.
type mockStore struct {
	entries   []entities.IndexEntry
	addErr    error
	countErr  error
	searchFn  func(vector []float32, topK int) ([]entities.RetrievedChunk, error)
	clearHits int
}

func (m *mockStore) Add(ctx context.Context, entries []entities.IndexEntry) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockStore) Search(ctx context.Context, vector []float32, topK int) ([]entities.RetrievedChunk, error) {
	if m.searchFn != nil {
		return m.searchFn(vector, topK)
	}
	var out []entities.RetrievedChunk
	for i, e := range m.entries {
		if i >= topK {
			break
		}
		out = append(out, entities.RetrievedChunk{Document: e.Document, Metadata: e.Metadata, Similarity: 0.9})
	}
	return out, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.entries), nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.clearHits++
	m.entries = nil
	return nil
}

func someChunks(n int) []entities.Chunk {
	chunks := make([]entities.Chunk, n)
	for i := range chunks {
		chunks[i] = entities.Chunk{
			ID:       "row_" + string(rune('0'+i)),
			Text:     "chunk text",
			Metadata: entities.ChunkMetadata{RowIndex: i},
		}
	}
	return chunks
}

func TestIndexer_BuildStoresAllChunks(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockStore{}
	ix := NewIndexer(embedder, store, 2)

	if err := ix.Build(context.Background(), someChunks(5)); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(store.entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(store.entries))
	}
	// 5 chunks with batch size 2 = 3 provider calls.
	if len(embedder.batchSize) != 3 {
		t.Errorf("expected 3 batches, got %d", len(embedder.batchSize))
	}
}

func TestIndexer_BuildIsIdempotent(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockStore{}
	ix := NewIndexer(embedder, store, 0)

	ctx := context.Background()
	if err := ix.Build(ctx, someChunks(3)); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	before := len(store.entries)
	callsBefore := embedder.calls

	if err := ix.Build(ctx, someChunks(3)); err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if len(store.entries) != before {
		t.Errorf("count changed on second build: %d -> %d", before, len(store.entries))
	}
	if embedder.calls != callsBefore {
		t.Error("second build should not call the embedding provider")
	}
}

func TestIndexer_AdoptsPopulatedStore(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockStore{entries: []entities.IndexEntry{{ID: "row_0"}}}
	ix := NewIndexer(embedder, store, 0)

	if err := ix.Build(context.Background(), someChunks(3)); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if embedder.calls != 0 {
		t.Error("populated store must short-circuit the build")
	}
	if len(store.entries) != 1 {
		t.Errorf("store mutated by no-op build: %d entries", len(store.entries))
	}
}

func TestIndexer_EmbeddingFailureIsAllOrNothing(t *testing.T) {
	embedder := &mockEmbedder{batchErr: errors.New("provider down")}
	store := &mockStore{}
	ix := NewIndexer(embedder, store, 2)

	err := ix.Build(context.Background(), someChunks(4))
	if err == nil {
		t.Fatal("expected build to fail")
	}
	if !errors.Is(err, entities.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
	if len(store.entries) != 0 {
		t.Errorf("partial index persisted: %d entries", len(store.entries))
	}
}

func TestIndexer_StoreFailureWrapsIndexError(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockStore{addErr: errors.New("disk full")}
	ix := NewIndexer(embedder, store, 0)

	err := ix.Build(context.Background(), someChunks(2))
	if !errors.Is(err, entities.ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
}

func TestIndexer_RebuildReplacesEntries(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockStore{}
	ix := NewIndexer(embedder, store, 0)

	ctx := context.Background()
	if err := ix.Build(ctx, someChunks(3)); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := ix.Rebuild(ctx, someChunks(2)); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if len(store.entries) != 2 {
		t.Errorf("expected 2 entries after rebuild, got %d", len(store.entries))
	}
	if store.clearHits == 0 {
		t.Error("rebuild must clear the store first")
	}
}
