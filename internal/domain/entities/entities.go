// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

// Table is a raw tabular extract as ingested from the record source:
// column names plus string-valued rows, before any validation.
type Table struct {
	Columns []string
	Rows    [][]string
}

// CleanRecord is a procurement row that survived validation.
// Invariant: QuantityKG > 0 and PricePerKG == SpendUSD / QuantityKG.
type CleanRecord struct {
	Commodity  string
	Supplier   string
	QuantityKG float64
	SpendUSD   float64
	PricePerKG float64
	RowIndex   int // zero-based position in the source, stable across runs
}

// ChunkMetadata mirrors every field of the record a chunk was derived from,
// so answers can cite exact figures without re-reading the source.
type ChunkMetadata struct {
	Commodity  string
	Supplier   string
	QuantityKG float64
	SpendUSD   float64
	PricePerKG float64
	RowIndex   int
}

// Chunk is the atomic retrievable unit: descriptive text plus metadata
// derived from one clean record.
type Chunk struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
}

// IndexEntry is what the vector store persists for one chunk.
// Vector is unit-normalized so cosine similarity reduces to a dot product.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Document string
	Metadata ChunkMetadata
}

// RetrievedChunk is a search hit returned by the vector store.
type RetrievedChunk struct {
	Document   string
	Metadata   ChunkMetadata
	Similarity float64
}

// ConversationTurn is one prior exchange supplied by the caller.
// Roles are "user" and "assistant" by convention.
type ConversationTurn struct {
	Role    string
	Content string
}

// Answer is the synthesized response with its supporting evidence.
// Sources and Contexts are parallel to the retrieval order.
type Answer struct {
	Text     string
	Sources  []ChunkMetadata
	Contexts []string
}
