package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaAdapter_EmbedReturnsUnitVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{3, 4, 0},
		})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test-model")
	emb, err := adapter.Embed(context.Background(), "hello")

	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(emb) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(emb))
	}

	var norm float64
	for _, v := range emb {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("vector not unit-normalized, squared norm %f", norm)
	}
}

func TestOllamaAdapter_EmbedBatch(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{1, 0},
		})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test-model")
	results, err := adapter.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 || calls != 3 {
		t.Errorf("expected 3 results from 3 calls, got %d/%d", len(results), calls)
	}
}

func TestOllamaAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test")
	if _, err := adapter.Embed(context.Background(), "test"); err == nil {
		t.Error("should error on 500")
	}
}

func TestOllamaAdapter_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{}})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test")
	if _, err := adapter.Embed(context.Background(), "test"); err == nil {
		t.Error("should error on empty embedding")
	}
}

func TestOllamaAdapter_DefaultValues(t *testing.T) {
	adapter := NewOllamaAdapter("", "")
	if adapter.baseURL != "http://localhost:11434" {
		t.Error("should default to localhost")
	}
	if adapter.model != "nomic-embed-text" {
		t.Error("should default to nomic-embed-text")
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected normalized vector: %v", v)
	}

	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector must pass through: %v", zero)
	}
}
