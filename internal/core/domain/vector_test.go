package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopK(t *testing.T) {
	chunks := []Chunk{
		{Ordinal: 0, Embedding: []float32{0, 1}},
		{Ordinal: 1, Embedding: []float32{1, 0}},
		{Ordinal: 2, Embedding: []float32{1, 1}},
		{Ordinal: 3, Embedding: []float32{1, 0}},
	}

	got := TopK(chunks, []float32{1, 0}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Chunk.Ordinal)
	assert.Equal(t, 3, got[1].Chunk.Ordinal)
	assert.Equal(t, 2, got[2].Chunk.Ordinal)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	assert.Len(t, TopK(chunks, []float32{1, 0}, 10), 4)
	assert.Empty(t, TopK(nil, []float32{1, 0}, 3))
}
