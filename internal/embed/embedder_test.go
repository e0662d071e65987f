package embed

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }

func TestLazyInitializesOnce(t *testing.T) {
	var inits atomic.Int32
	lazy := NewLazy(func() (Embedder, error) {
		inits.Add(1)
		return &fakeEmbedder{vec: []float32{3, 4}}, nil
	}, zap.NewNop())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lazy.Embed(context.Background(), "text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inits.Load())
}

func TestLazyRetriesFailedInit(t *testing.T) {
	var inits int
	lazy := NewLazy(func() (Embedder, error) {
		inits++
		if inits == 1 {
			return nil, errors.New("model download failed")
		}
		return &fakeEmbedder{vec: []float32{1, 0}}, nil
	}, zap.NewNop())

	_, err := lazy.Embed(context.Background(), "text")
	var embedErr *Error
	require.ErrorAs(t, err, &embedErr)

	_, err = lazy.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inits)
}

func TestLazyWrapsInferenceError(t *testing.T) {
	lazy := NewLazy(func() (Embedder, error) {
		return &fakeEmbedder{err: errors.New("inference blew up")}, nil
	}, zap.NewNop())

	_, err := lazy.Embed(context.Background(), "text")
	var embedErr *Error
	assert.ErrorAs(t, err, &embedErr)
}

func TestLazyNormalizesOutput(t *testing.T) {
	lazy := NewLazy(func() (Embedder, error) {
		return &fakeEmbedder{vec: []float32{3, 4}}, nil
	}, zap.NewNop())

	vec, err := lazy.Embed(context.Background(), "text")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[1]), 1e-6)
}

func TestNormalizeZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}
