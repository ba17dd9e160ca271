// Package vectordb - chromem.go is the default persistent store, an embedded
// ChromaDB-style database that survives restarts so embeddings are not
// recomputed on every start.
package vectordb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"

	"spendchat/internal/domain/entities"
)

const defaultCollection = "spend_chunks"

// ChromemStore implements ports.VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// NewChromemStore opens (or creates) a store at path. An empty path yields a
// non-persistent database, useful for tests.
func NewChromemStore(path, collection string) (*ChromemStore, error) {
	if collection == "" {
		collection = defaultCollection
	}

	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db: %w", err)
		}
	}

	col, err := db.GetOrCreateCollection(collection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col, name: collection}, nil
}

// Add persists entries with their precomputed vectors.
func (s *ChromemStore) Add(ctx context.Context, entries []entities.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	metadatas := make([]map[string]string, len(entries))
	contents := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		vectors[i] = e.Vector
		metadatas[i] = metadataToMap(e.Metadata)
		contents[i] = e.Document
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("adding entries: %w", err)
	}
	return nil
}

// Search returns up to topK entries by descending cosine similarity.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, topK int) ([]entities.RetrievedChunk, error) {
	// chromem rejects queries asking for more results than it holds.
	if n := s.collection.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	out := make([]entities.RetrievedChunk, len(results))
	for i, r := range results {
		out[i] = entities.RetrievedChunk{
			Document:   r.Content,
			Metadata:   metadataFromMap(r.Metadata),
			Similarity: float64(r.Similarity),
		}
	}
	return out, nil
}

// Count returns the number of persisted entries.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Clear drops and recreates the collection.
func (s *ChromemStore) Clear(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	col, err := s.db.GetOrCreateCollection(s.name, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return fmt.Errorf("recreating collection: %w", err)
	}
	s.collection = col
	return nil
}

// metadataToMap flattens chunk metadata into chromem's string map.
func metadataToMap(m entities.ChunkMetadata) map[string]string {
	return map[string]string{
		"commodity":    m.Commodity,
		"supplier":     m.Supplier,
		"quantity_kg":  strconv.FormatFloat(m.QuantityKG, 'f', -1, 64),
		"spend_usd":    strconv.FormatFloat(m.SpendUSD, 'f', -1, 64),
		"price_per_kg": strconv.FormatFloat(m.PricePerKG, 'f', -1, 64),
		"row_index":    strconv.Itoa(m.RowIndex),
	}
}

// metadataFromMap restores chunk metadata from chromem's string map.
// Unparsable numerics come back as zero.
func metadataFromMap(m map[string]string) entities.ChunkMetadata {
	md := entities.ChunkMetadata{
		Commodity: m["commodity"],
		Supplier:  m["supplier"],
	}
	md.QuantityKG, _ = strconv.ParseFloat(m["quantity_kg"], 64)
	md.SpendUSD, _ = strconv.ParseFloat(m["spend_usd"], 64)
	md.PricePerKG, _ = strconv.ParseFloat(m["price_per_kg"], 64)
	md.RowIndex, _ = strconv.Atoi(m["row_index"])
	return md
}
