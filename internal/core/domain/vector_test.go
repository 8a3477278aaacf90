package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCosineSimilarity_Identical tests that equal vectors score 1
func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{0.5, 0.5, 0.7071}

	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

// TestCosineSimilarity_Orthogonal tests that perpendicular vectors score 0
func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

// TestCosineSimilarity_Opposite tests that opposing vectors score -1
func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}

	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
}

// TestCosineSimilarity_Degenerate tests mismatched and zero inputs
func TestCosineSimilarity_Degenerate(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity(nil, nil))
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	})
}

// TestValidateChunkWindow_Accepts tests the legal parameter range
func TestValidateChunkWindow_Accepts(t *testing.T) {
	assert.NoError(t, ValidateChunkWindow(200, 50))
	assert.NoError(t, ValidateChunkWindow(1, 0))
	assert.NoError(t, ValidateChunkWindow(10, 9))
}

// TestValidateChunkWindow_Rejects tests that illegal windows are ErrConfig
func TestValidateChunkWindow_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		window  int
		overlap int
	}{
		{"overlap equals window", 100, 100},
		{"overlap above window", 100, 150},
		{"negative overlap", 100, -1},
		{"zero window", 0, 0},
		{"negative window", -5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateChunkWindow(tc.window, tc.overlap)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}
