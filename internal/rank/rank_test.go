package rank

import (
	"context"
	"testing"

	"faqgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, vec []float32) models.CorpusEntry {
	return models.CorpusEntry{ID: id, Vector: vec}
}

func TestCosineBounds(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}},
		{"opposite", []float32{1, 0}, []float32{-1, 0}},
		{"same direction scaled", []float32{1, 2, 3}, []float32{2, 4, 6}},
		{"arbitrary", []float32{0.3, -0.7, 0.1}, []float32{-0.5, 0.2, 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Cosine(tt.a, tt.b)
			assert.GreaterOrEqual(t, s, -1.0000001)
			assert.LessOrEqual(t, s, 1.0000001)
		})
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	a := []float32{0.1, -0.4, 2.5, 0.003}
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
}

func TestCosineZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	a := []float32{1, 2, 3}

	assert.Equal(t, 0.0, Cosine(zero, a))
	assert.Equal(t, 0.0, Cosine(a, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosineDimensionMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{1, 0, 0}))
}

func TestTopKOrderAndScenario(t *testing.T) {
	// corpus of 3 entries; query [1,0] must rank entry 1 then entry 3
	corpus := []models.CorpusEntry{
		entry("a", []float32{1, 0}),
		entry("b", []float32{0, 1}),
		entry("c", []float32{0.9, 0.1}),
	}

	results := TopK([]float32{1, 0}, corpus, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Entry.ID)
	assert.Equal(t, "c", results[1].Entry.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestTopKDescendingOrder(t *testing.T) {
	corpus := []models.CorpusEntry{
		entry("a", []float32{0.2, 0.8}),
		entry("b", []float32{1, 0}),
		entry("c", []float32{0.5, 0.5}),
		entry("d", []float32{-1, 0}),
	}

	results := TopK([]float32{1, 0}, corpus, len(corpus))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestTopKPrefixProperty(t *testing.T) {
	corpus := []models.CorpusEntry{
		entry("a", []float32{1, 0}),
		entry("b", []float32{0, 1}),
		entry("c", []float32{0.9, 0.1}),
		entry("d", []float32{0.5, 0.5}),
		entry("e", []float32{-0.3, 0.2}),
	}
	query := []float32{0.7, 0.3}

	for k := 0; k < len(corpus); k++ {
		shorter := TopK(query, corpus, k)
		longer := TopK(query, corpus, k+1)
		require.Len(t, shorter, k)
		for i := range shorter {
			assert.Equal(t, shorter[i].Entry.ID, longer[i].Entry.ID)
		}
	}
}

func TestTopKStableTies(t *testing.T) {
	// identical vectors: tie broken by insertion order, deterministically
	corpus := []models.CorpusEntry{
		entry("first", []float32{1, 0}),
		entry("second", []float32{1, 0}),
		entry("third", []float32{1, 0}),
	}

	for range 10 {
		results := TopK([]float32{1, 0}, corpus, 3)
		require.Len(t, results, 3)
		assert.Equal(t, "first", results[0].Entry.ID)
		assert.Equal(t, "second", results[1].Entry.ID)
		assert.Equal(t, "third", results[2].Entry.ID)
	}
}

func TestTopKEdgeCases(t *testing.T) {
	corpus := []models.CorpusEntry{
		entry("a", []float32{1, 0}),
		entry("b", []float32{0, 1}),
	}

	assert.Empty(t, TopK([]float32{1, 0}, corpus, 0))
	assert.Len(t, TopK([]float32{1, 0}, corpus, 10), 2)
	assert.Empty(t, TopK([]float32{1, 0}, nil, 5))
}

func TestTopKContextCancelled(t *testing.T) {
	corpus := make([]models.CorpusEntry, 1000)
	for i := range corpus {
		corpus[i] = entry("x", []float32{1, 0})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TopKContext(ctx, []float32{1, 0}, corpus, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
