package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"faqgen/internal/models"

	"go.uber.org/zap"
)

// ErrDataUnavailable reports that the precomputed corpus could not be loaded.
// Retrieval cannot proceed without it; callers should degrade to generation
// without examples rather than retry.
var ErrDataUnavailable = errors.New("corpus data unavailable")

// Store loads the precomputed embedding corpus and keeps it in memory for the
// lifetime of the process. Loading is all-or-nothing: a partially readable
// file fails the whole call.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	entries []models.CorpusEntry
	dims    int
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the corpus, reading and validating the backing file on first
// call. Only a successful load is memoized; a failed load may be retried.
func (s *Store) Load() ([]models.CorpusEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries != nil {
		return s.entries, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDataUnavailable, s.path, err)
	}

	var entries []models.CorpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDataUnavailable, s.path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s contains no entries", ErrDataUnavailable, s.path)
	}

	dims := len(entries[0].Vector)
	if dims == 0 {
		return nil, fmt.Errorf("%w: entry %s has an empty embedding", ErrDataUnavailable, entries[0].ID)
	}
	for i := range entries {
		if len(entries[i].Vector) != dims {
			return nil, fmt.Errorf("%w: entry %s has dimension %d, expected %d",
				ErrDataUnavailable, entries[i].ID, len(entries[i].Vector), dims)
		}
		entries[i].Answer = models.TruncateAnswer(entries[i].Answer)
	}

	s.entries = entries
	s.dims = dims
	s.logger.Info("Corpus loaded",
		zap.String("path", s.path),
		zap.Int("entries", len(entries)),
		zap.Int("dimensions", dims),
	)

	return s.entries, nil
}

// Dimensions returns the embedding dimension of the loaded corpus, or 0 if
// the corpus has not been loaded yet.
func (s *Store) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// Reset drops the memoized corpus so the next Load rereads the file.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dims = 0
}
