// Command embedgen builds the precomputed embedding corpus: it reads the
// published FAQ export, embeds every entry in batches, and writes the
// faq-embeddings.json file consumed at runtime.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"faqgen/internal/embed"
	"faqgen/internal/models"
	"faqgen/pkg/config"
	"faqgen/pkg/logger"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	batchSize = 100
	// embedding input is capped well under the provider token limit
	maxInputRunes = 8000
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	faqPath := "data/faq.json"
	if len(os.Args) > 1 {
		faqPath = os.Args[1]
	}
	outputPath := cfg.Corpus.EmbeddingsPath

	client, err := embed.NewOpenAIClient(&cfg.Embedding)
	if err != nil {
		return err
	}

	items, err := readFAQ(faqPath)
	if err != nil {
		return err
	}
	log.Info("FAQ export loaded", zap.String("path", faqPath), zap.Int("items", len(items)))

	if err := backupExisting(outputPath, log); err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()
	entries := generateEmbeddings(ctx, client, items, log)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode embeddings: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	log.Info("Embedding corpus written",
		zap.String("path", outputPath),
		zap.Int("entries", len(entries)),
		zap.Int("skipped", len(items)-len(entries)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if len(entries) > 0 {
		log.Info("Sample entry",
			zap.String("question", entries[0].Question),
			zap.Int("dimensions", len(entries[0].Vector)),
		)
	}
	if len(entries) < len(items) {
		log.Warn("Some FAQ items could not be embedded",
			zap.Int("embedded", len(entries)),
			zap.Int("total", len(items)),
		)
	}
	return nil
}

func readFAQ(path string) ([]models.FAQItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ export: %w", err)
	}

	var items []models.FAQItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ export: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s contains no FAQ items", path)
	}
	return items, nil
}

// backupExisting keeps the previous corpus next to the new one. Embedding a
// large FAQ base costs money; the backup makes an accidental run recoverable.
func backupExisting(path string, log *zap.Logger) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read existing corpus: %w", err)
	}

	backupPath := strings.TrimSuffix(path, ".json") + fmt.Sprintf(".backup-%d.json", time.Now().Unix())
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	log.Info("Existing corpus backed up", zap.String("backup", backupPath))
	return nil
}

// generateEmbeddings embeds items in batches. A failed batch falls back to
// one-by-one embedding so a single oversized or rate-limited item cannot sink
// the rest; items that still fail are skipped and reported.
func generateEmbeddings(ctx context.Context, client *embed.OpenAIClient, items []models.FAQItem, log *zap.Logger) []models.CorpusEntry {
	bar := progressbar.Default(int64(len(items)), "embedding")
	var entries []models.CorpusEntry

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = embeddingInput(item)
		}

		vectors, err := client.EmbedBatch(ctx, texts)
		if err != nil {
			log.Warn("Batch embedding failed, retrying items individually",
				zap.Int("batch_start", start),
				zap.Error(err),
			)
			for _, item := range batch {
				vector, itemErr := client.Embed(ctx, embeddingInput(item))
				if itemErr != nil {
					log.Warn("Skipping FAQ item",
						zap.String("faq_id", item.ID),
						zap.Error(itemErr),
					)
					bar.Add(1)
					continue
				}
				entries = append(entries, toEntry(item, vector))
				bar.Add(1)
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}

		for i, item := range batch {
			entries = append(entries, toEntry(item, vectors[i]))
		}
		bar.Add(len(batch))

		if end < len(items) {
			time.Sleep(time.Second)
		}
	}

	return entries
}

func embeddingInput(item models.FAQItem) string {
	text := fmt.Sprintf("Вопрос: %s\nОтвет: %s", item.Question, item.Answer)
	runes := []rune(text)
	if len(runes) > maxInputRunes {
		return string(runes[:maxInputRunes])
	}
	return text
}

func toEntry(item models.FAQItem, vector []float32) models.CorpusEntry {
	return models.CorpusEntry{
		ID:         item.ID,
		Vector:     vector,
		Question:   item.Question,
		Answer:     models.TruncateAnswer(item.Answer),
		Category:   item.Category,
		Usefulness: item.Usefulness,
	}
}
