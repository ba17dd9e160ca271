// Package vectordb provides vector store adapters.
// Clean Architecture: Adapters implementing ports.VectorStore.
package vectordb

import "math"

// cosineSimilarity calculates cosine similarity between two vectors.
// Distance for these stores is 1 - similarity.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
