package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeVectorRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, math.MaxFloat32, math.SmallestNonzeroFloat32}
	blob := serializeVector(vec)
	assert.Len(t, blob, len(vec)*4)
	assert.Equal(t, vec, deserializeVector(blob))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestQuoteFTSPattern(t *testing.T) {
	assert.Equal(t, `"payment"`, quoteFTSPattern("payment"))
	assert.Equal(t, `"say ""hi"" OR NOT"`, quoteFTSPattern(`say "hi" OR NOT`))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `%a\%b\_c\\%`, escapeLike(`a%b_c\`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
