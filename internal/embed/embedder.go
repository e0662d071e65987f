package embed

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

// Error wraps any inference failure. Callers treat it as "retrieval
// degraded": generation proceeds without semantic examples.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Lazy defers construction of the underlying embedder to first use and shares
// the single instance across all callers. Concurrent first calls block on one
// initialization; a failed initialization is retried on the next call rather
// than memoized.
//
// Embed output is L2-normalized. Downstream ranking still computes full
// cosine, since corpus vectors are not guaranteed to be unit length.
type Lazy struct {
	init   func() (Embedder, error)
	logger *zap.Logger

	mu       sync.Mutex
	delegate Embedder
}

func NewLazy(init func() (Embedder, error), logger *zap.Logger) *Lazy {
	return &Lazy{init: init, logger: logger}
}

func (l *Lazy) instance() (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.delegate != nil {
		return l.delegate, nil
	}

	l.logger.Info("Initializing embedding backend")
	delegate, err := l.init()
	if err != nil {
		return nil, &Error{Cause: err}
	}
	l.delegate = delegate
	return delegate, nil
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	delegate, err := l.instance()
	if err != nil {
		return nil, err
	}

	vec, err := delegate.Embed(ctx, text)
	if err != nil {
		return nil, &Error{Cause: err}
	}

	return Normalize(vec), nil
}

func (l *Lazy) Dimensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.delegate == nil {
		return 0
	}
	return l.delegate.Dimensions()
}

// Normalize scales a vector to unit L2 length. Zero vectors are returned
// unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
