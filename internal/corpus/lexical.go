package corpus

import (
	"fmt"

	"faqgen/internal/models"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

// LexicalIndex is an in-memory full-text index over the corpus, used when
// semantic retrieval is unavailable (embedding failure, missing API key) and
// by the search command as a keyword fallback.
type LexicalIndex struct {
	index  bleve.Index
	byID   map[string]*models.CorpusEntry
	logger *zap.Logger
}

type lexicalDoc struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// NewLexicalIndex builds a memory-only bleve index over the given entries.
func NewLexicalIndex(entries []models.CorpusEntry, logger *zap.Logger) (*LexicalIndex, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create lexical index: %w", err)
	}

	byID := make(map[string]*models.CorpusEntry, len(entries))
	batch := index.NewBatch()
	for i := range entries {
		entry := &entries[i]
		byID[entry.ID] = entry
		doc := lexicalDoc{
			Question: entry.Question,
			Answer:   entry.Answer,
			Category: entry.Category,
		}
		if err := batch.Index(entry.ID, doc); err != nil {
			return nil, fmt.Errorf("failed to index entry %s: %w", entry.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to build lexical index: %w", err)
	}

	logger.Info("Lexical index built", zap.Int("entries", len(entries)))

	return &LexicalIndex{index: index, byID: byID, logger: logger}, nil
}

// Search returns up to k entries matching the query text, best first.
func (l *LexicalIndex) Search(query string, k int) ([]*models.CorpusEntry, error) {
	if k <= 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	results := make([]*models.CorpusEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if entry, ok := l.byID[hit.ID]; ok {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Close releases index resources.
func (l *LexicalIndex) Close() error {
	return l.index.Close()
}
