package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faqgen/internal/cache"
	"faqgen/internal/checklist"
	"faqgen/internal/corpus"
	"faqgen/internal/embed"
	"faqgen/internal/llm"
	"faqgen/internal/models"
	"faqgen/internal/rank"
	"faqgen/internal/style"

	"go.uber.org/zap"
)

// ErrAllBackendsFailed reports that every backend in the pool errored with a
// non-rate-limit failure for the same batch.
var ErrAllBackendsFailed = errors.New("all backends failed")

// Config carries the orchestrator tunables.
type Config struct {
	TopK           int
	BatchSize      int
	Cooldown       time.Duration
	RequestTimeout time.Duration
	ChecklistDoc   string
}

// Generator drives the full pipeline: cache consult, retrieval, checklist
// compression, batched prompting, and backend rotation.
type Generator struct {
	store      *corpus.Store
	embedder   embed.Embedder
	lexical    *corpus.LexicalIndex
	compressor *checklist.Compressor
	analyzer   *style.Analyzer
	answers    *cache.AnswerCache
	pool       *Pool
	cfg        Config
	logger     *zap.Logger

	// sleep is swapped in tests to avoid real cooldown waits.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGenerator(
	store *corpus.Store,
	embedder embed.Embedder,
	lexical *corpus.LexicalIndex,
	compressor *checklist.Compressor,
	analyzer *style.Analyzer,
	answers *cache.AnswerCache,
	pool *Pool,
	cfg Config,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		store:      store,
		embedder:   embedder,
		lexical:    lexical,
		compressor: compressor,
		analyzer:   analyzer,
		answers:    answers,
		pool:       pool,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateQuestions proposes candidate FAQ questions for the source text.
func (g *Generator) GenerateQuestions(ctx context.Context, sourceText string) ([]models.GeneratedQuestion, error) {
	examples, styleGuide := g.retrieveContext(ctx, sourceText)

	prompt := BuildQuestionsPrompt(sourceText, styleGuide, FormatExamples(examples))
	g.logger.Info("Generating questions",
		zap.Int("examples", len(examples)),
		zap.Int("prompt_tokens_estimate", EstimateTokens(prompt)),
	)

	var questions []models.GeneratedQuestion
	_, err := g.completeWithRotation(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, func(text string) error {
		parsed, err := ParseQuestions(text)
		if err != nil {
			return err
		}
		questions = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GenerateAnswers produces answers for the selected questions. A fresh cache
// entry for the same (sourceText, questions) pair short-circuits the whole
// pipeline. Batches are processed strictly in order.
func (g *Generator) GenerateAnswers(ctx context.Context, sourceText string, questions []string) ([]models.GeneratedFAQ, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to answer")
	}

	key := cache.Key(sourceText, questions)
	if cached, ok := g.answers.Get(key); ok {
		return cached, nil
	}

	examples, styleGuide := g.retrieveContext(ctx, sourceText)
	rules := g.compressor.Compress(sourceText, g.cfg.ChecklistDoc)

	batchSize := g.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	var results []models.GeneratedFAQ
	for start := 0; start < len(questions); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchSize
		if end > len(questions) {
			end = len(questions)
		}
		batch := questions[start:end]

		prompt := BuildAnswersPrompt(batch, sourceText, styleGuide, FormatExamples(examples), rules)
		g.logger.Info("Generating answer batch",
			zap.Int("batch_start", start),
			zap.Int("batch_size", len(batch)),
			zap.Int("prompt_tokens_estimate", EstimateTokens(prompt)),
		)

		var answers []models.GeneratedFAQ
		backend, err := g.completeWithRotation(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, func(text string) error {
			parsed, err := ParseAnswerBatch(text)
			if err != nil {
				return err
			}
			if len(parsed) != len(batch) {
				return fmt.Errorf("%w: expected %d answers, got %d", ErrMalformedResponse, len(batch), len(parsed))
			}
			answers = parsed
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("batch starting at question %d: %w", start, err)
		}

		g.logger.Info("Batch complete", zap.String("backend", backend), zap.Int("answers", len(answers)))
		results = append(results, answers...)
	}

	g.answers.Put(key, results)
	return results, nil
}

// Usage returns per-backend successful batch counts for diagnostics.
func (g *Generator) Usage() map[string]int {
	return g.pool.Usage()
}

// retrieveContext embeds the source text and ranks the corpus against it.
// Retrieval failures degrade to lexical search, then to no examples at all;
// they never fail generation.
func (g *Generator) retrieveContext(ctx context.Context, sourceText string) ([]*models.CorpusEntry, string) {
	entries, err := g.store.Load()
	if err != nil {
		g.logger.Warn("Corpus unavailable, generating without examples", zap.Error(err))
		return nil, ""
	}

	styleGuide := ""
	if analysis, err := g.analyzer.Analyze(entries); err == nil {
		styleGuide = style.FormatGuide(analysis)
	} else {
		g.logger.Warn("Style analysis failed", zap.Error(err))
	}

	topK := g.cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	query, err := g.embedder.Embed(ctx, sourceText)
	if err != nil {
		g.logger.Warn("Embedding failed, falling back to lexical search", zap.Error(err))
		return g.lexicalFallback(sourceText, topK), styleGuide
	}

	ranked, err := rank.TopKContext(ctx, query, entries, topK)
	if err != nil {
		g.logger.Warn("Ranking aborted", zap.Error(err))
		return nil, styleGuide
	}

	examples := make([]*models.CorpusEntry, 0, len(ranked))
	for _, r := range ranked {
		examples = append(examples, r.Entry)
	}
	return examples, styleGuide
}

func (g *Generator) lexicalFallback(sourceText string, k int) []*models.CorpusEntry {
	if g.lexical == nil {
		return nil
	}
	entries, err := g.lexical.Search(sourceText, k)
	if err != nil {
		g.logger.Warn("Lexical fallback failed", zap.Error(err))
		return nil
	}
	return entries
}

// completeWithRotation drives one batch through the backend pool. Rate-limit
// failures park the backend and move on; when nothing is available it sleeps
// the cooldown and resets the pool. The batch is abandoned only once every
// backend has failed it with a non-rate-limit error.
func (g *Generator) completeWithRotation(ctx context.Context, messages []llm.Message, handle func(string) error) (string, error) {
	if g.pool.Len() == 0 {
		return "", fmt.Errorf("no backends configured")
	}

	failed := make(map[string]bool)
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		backend, ok := g.pool.Next(failed)
		if !ok {
			if len(failed) == g.pool.Len() {
				return "", fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
			}
			cooldown := g.cfg.Cooldown
			if cooldown <= 0 {
				cooldown = time.Minute
			}
			g.logger.Info("All backends rate limited, cooling down", zap.Duration("cooldown", cooldown))
			if err := g.sleep(ctx, cooldown); err != nil {
				return "", err
			}
			g.pool.ResetAll()
			continue
		}

		if err := backend.wait(ctx); err != nil {
			return "", err
		}

		text, err := g.complete(ctx, backend, messages)
		if err != nil {
			if llm.IsRateLimit(err) {
				g.pool.MarkRateLimited(backend.Name)
				continue
			}
			g.logger.Warn("Backend failed",
				zap.String("backend", backend.Name),
				zap.Error(err),
			)
			failed[backend.Name] = true
			lastErr = err
			continue
		}

		if err := handle(text); err != nil {
			g.logger.Warn("Backend returned unusable output",
				zap.String("backend", backend.Name),
				zap.Error(err),
			)
			failed[backend.Name] = true
			lastErr = err
			continue
		}

		g.pool.RecordUse(backend.Name)
		return backend.Name, nil
	}
}

func (g *Generator) complete(ctx context.Context, backend *Backend, messages []llm.Message) (string, error) {
	timeout := g.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return backend.completer.Complete(callCtx, messages, backend.Model)
}
