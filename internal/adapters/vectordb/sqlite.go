// Package vectordb - sqlite.go is an alternative persistent store for
// deployments that want a single plain database file.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"spendchat/internal/domain/entities"
)

// SQLiteStore implements ports.VectorStore on a single SQLite file.
// Search is brute force over all rows; fine at procurement-table scale.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store under dataPath.
func NewSQLiteStore(dataPath string) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./data"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

// initSchema creates the entries table. seq fixes the native return order
// used for similarity ties.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		document TEXT NOT NULL,
		vector BLOB NOT NULL,
		metadata BLOB NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add persists entries in one transaction.
func (s *SQLiteStore) Add(ctx context.Context, entries []entities.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (id, document, vector, metadata)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		vectorJSON, err := json.Marshal(e.Vector)
		if err != nil {
			return fmt.Errorf("encoding vector: %w", err)
		}
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, e.ID, e.Document, vectorJSON, metadataJSON); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Search loads all rows in insertion order and ranks them by cosine
// similarity; the stable sort keeps that order for ties.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, topK int) ([]entities.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT document, vector, metadata FROM entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var results []entities.RetrievedChunk
	for rows.Next() {
		var document string
		var vectorJSON, metadataJSON []byte
		if err := rows.Scan(&document, &vectorJSON, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var stored []float32
		if err := json.Unmarshal(vectorJSON, &stored); err != nil {
			continue // skip corrupted vectors
		}
		var metadata entities.ChunkMetadata
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			continue
		}

		results = append(results, entities.RetrievedChunk{
			Document:   document,
			Metadata:   metadata,
			Similarity: cosineSimilarity(vector, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// Clear removes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
