// Package vectordb - memory.go is a non-persistent store for tests and
// deployments where the index is rebuilt on every start.
package vectordb

import (
	"context"
	"sort"
	"sync"

	"spendchat/internal/domain/entities"
)

// MemoryStore is an in-memory vector store with brute-force cosine search.
// Entries keep insertion order, which also decides ties in search results.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []entities.IndexEntry
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add persists entries in order.
func (s *MemoryStore) Add(ctx context.Context, entries []entities.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entries...)
	return nil
}

// Search returns up to topK entries by descending cosine similarity.
// The stable sort keeps insertion order for equal scores.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, topK int) ([]entities.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		entry entities.IndexEntry
		score float64
	}

	results := make([]scored, len(s.entries))
	for i, e := range s.entries {
		results[i] = scored{entry: e, score: cosineSimilarity(vector, e.Vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if topK > len(results) {
		topK = len(results)
	}
	if topK < 0 {
		topK = 0
	}

	out := make([]entities.RetrievedChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = entities.RetrievedChunk{
			Document:   results[i].entry.Document,
			Metadata:   results[i].entry.Metadata,
			Similarity: results[i].score,
		}
	}
	return out, nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
