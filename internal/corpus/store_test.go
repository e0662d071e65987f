package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"faqgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq-embeddings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCorpus = `[
	{"faq_id": "faq-1", "embedding": [1, 0], "question": "Как пополнить счет?", "answer": "Через приложение.", "category": "payments", "usefulness": 90},
	{"faq_id": "faq-2", "embedding": [0, 1], "question": "Как заказать карту?", "answer": "В разделе Карты.", "category": "cards", "usefulness": 85}
]`

func TestStoreLoad(t *testing.T) {
	store := NewStore(writeCorpusFile(t, validCorpus), zap.NewNop())

	entries, err := store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "faq-1", entries[0].ID)
	assert.Equal(t, []float32{1, 0}, entries[0].Vector)
	assert.Equal(t, 2, store.Dimensions())
}

func TestStoreLoadMemoized(t *testing.T) {
	path := writeCorpusFile(t, validCorpus)
	store := NewStore(path, zap.NewNop())

	first, err := store.Load()
	require.NoError(t, err)

	// removing the file must not matter once loaded
	require.NoError(t, os.Remove(path))
	second, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestStoreLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"empty corpus", "[]"},
		{"empty embedding", `[{"faq_id": "x", "embedding": [], "question": "q", "answer": "a", "category": "c", "usefulness": 1}]`},
		{"dimension mismatch", `[
			{"faq_id": "a", "embedding": [1, 0], "question": "q", "answer": "a", "category": "c", "usefulness": 1},
			{"faq_id": "b", "embedding": [1, 0, 0], "question": "q", "answer": "a", "category": "c", "usefulness": 1}
		]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(writeCorpusFile(t, tt.content), zap.NewNop())
			_, err := store.Load()
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}
}

func TestStoreLoadTruncatesLongAnswers(t *testing.T) {
	long := strings.Repeat("о", models.AnswerMaxLen+50)
	content := `[{"faq_id": "a", "embedding": [1], "question": "q", "answer": "` + long + `", "category": "c", "usefulness": 1}]`

	store := NewStore(writeCorpusFile(t, content), zap.NewNop())
	entries, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.AnswerMaxLen, len([]rune(entries[0].Answer)))
}

func TestStoreReset(t *testing.T) {
	path := writeCorpusFile(t, validCorpus)
	store := NewStore(path, zap.NewNop())

	_, err := store.Load()
	require.NoError(t, err)

	store.Reset()
	assert.Equal(t, 0, store.Dimensions())

	require.NoError(t, os.Remove(path))
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLexicalIndexSearch(t *testing.T) {
	entries := []models.CorpusEntry{
		{ID: "1", Vector: []float32{1}, Question: "How to transfer money abroad", Answer: "Use the international transfer section", Category: "transfers"},
		{ID: "2", Vector: []float32{1}, Question: "How to order a card", Answer: "Open the cards tab", Category: "cards"},
	}

	index, err := NewLexicalIndex(entries, zap.NewNop())
	require.NoError(t, err)
	defer index.Close()

	results, err := index.Search("transfer money", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].ID)

	empty, err := index.Search("transfer", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
