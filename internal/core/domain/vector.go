package domain

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine of the angle between a and b
// in the range [-1, 1], higher meaning more similar. Mismatched
// lengths, empty vectors, and zero vectors all yield 0 so that a
// degenerate embedding can never outrank a real match.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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

// ValidateChunkWindow checks the chunk window parameters shared by
// the chunker and the settings layer. The overlap must satisfy
// 0 <= overlap < window; anything else would produce zero-progress
// or non-terminating windows and is rejected outright, never
// silently adjusted.
func ValidateChunkWindow(window, overlap int) error {
	if window <= 0 || overlap < 0 || overlap >= window {
		return fmt.Errorf("%w: chunk window %d with overlap %d (need 0 <= overlap < window)",
			ErrConfig, window, overlap)
	}
	return nil
}
