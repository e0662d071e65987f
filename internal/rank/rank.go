package rank

import (
	"context"
	"math"
	"sort"

	"faqgen/internal/models"
)

// Result pairs a corpus entry with its similarity to the query.
type Result struct {
	Entry *models.CorpusEntry
	Score float64
}

// checkEvery is how many entries TopKContext scores between ctx checks.
const checkEvery = 256

// Cosine computes cosine similarity between two vectors of equal dimension.
// Accumulation is done in float64 to avoid cancellation on high-dimensional
// normalized vectors. Returns 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// TopK scores the query against every entry and returns the k best results in
// descending score order. Ties keep the original corpus order (stable sort).
// k = 0 yields an empty slice; k beyond the corpus size ranks the whole corpus.
func TopK(query []float32, entries []models.CorpusEntry, k int) []Result {
	results, _ := topK(context.Background(), query, entries, k)
	return results
}

// TopKContext is TopK with periodic cancellation checks, for callers that
// rank large corpora on a shared goroutine.
func TopKContext(ctx context.Context, query []float32, entries []models.CorpusEntry, k int) ([]Result, error) {
	return topK(ctx, query, entries, k)
}

func topK(ctx context.Context, query []float32, entries []models.CorpusEntry, k int) ([]Result, error) {
	if k < 0 {
		k = 0
	}

	scored := make([]Result, 0, len(entries))
	for i := range entries {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		scored = append(scored, Result{
			Entry: &entries[i],
			Score: Cosine(query, entries[i].Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
