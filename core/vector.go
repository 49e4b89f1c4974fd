package core

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns ErrDimensionMismatch if the vectors differ in length.
// If either vector has zero magnitude the similarity is defined as 0,
// which keeps the result bounded without dividing by zero.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
