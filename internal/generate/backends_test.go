package generate

import (
	"testing"

	"faqgen/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPool(names ...string) *Pool {
	backends := make([]*Backend, 0, len(names))
	for i, name := range names {
		backends = append(backends, NewBackend(config.BackendDescriptor{
			Name:     name,
			Provider: "groq",
			Model:    "test-model",
			Priority: i,
		}, nil))
	}
	return NewPool(backends, zap.NewNop())
}

func TestPoolRoundRobin(t *testing.T) {
	pool := testPool("a", "b", "c")

	var order []string
	for range 6 {
		backend, ok := pool.Next(nil)
		require.True(t, ok)
		order = append(order, backend.Name)
	}

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestPoolSkipsRateLimited(t *testing.T) {
	pool := testPool("a", "b")
	pool.MarkRateLimited("a")

	for range 3 {
		backend, ok := pool.Next(nil)
		require.True(t, ok)
		assert.Equal(t, "b", backend.Name)
	}
}

func TestPoolExhausted(t *testing.T) {
	pool := testPool("a", "b")
	pool.MarkRateLimited("a")
	pool.MarkRateLimited("b")

	_, ok := pool.Next(nil)
	assert.False(t, ok)

	pool.ResetAll()
	backend, ok := pool.Next(nil)
	require.True(t, ok)
	assert.NotEmpty(t, backend.Name)
}

func TestPoolSkipSet(t *testing.T) {
	pool := testPool("a", "b")

	backend, ok := pool.Next(map[string]bool{"a": true})
	require.True(t, ok)
	assert.Equal(t, "b", backend.Name)

	_, ok = pool.Next(map[string]bool{"a": true, "b": true})
	assert.False(t, ok)
}

func TestPoolUsage(t *testing.T) {
	pool := testPool("a", "b")
	pool.RecordUse("a")
	pool.RecordUse("a")
	pool.RecordUse("b")

	usage := pool.Usage()
	assert.Equal(t, 2, usage["a"])
	assert.Equal(t, 1, usage["b"])
}
