package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"faqgen/internal/cache"
	"faqgen/internal/checklist"
	"faqgen/internal/corpus"
	"faqgen/internal/embed"
	"faqgen/internal/generate"
	"faqgen/internal/kv"
	"faqgen/internal/llm"
	"faqgen/internal/style"
	"faqgen/pkg/config"
	"faqgen/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the wired dependencies shared by the subcommands. Everything is
// built lazily so cheap commands (cache stats) do not pay for expensive
// setup (backend clients).
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	store      *corpus.Store
	compressor *checklist.Compressor
	analyzer   *style.Analyzer
	embedder   *embed.Lazy
	answers    *cache.AnswerCache
	kvStore    kv.Store
}

var shared *app

var rootCmd = &cobra.Command{
	Use:   "faqgen",
	Short: "AI-assisted FAQ authoring for the Kaspi.kz knowledge base",
	Long: `faqgen drafts FAQ content in the house style: it retrieves the most
similar published FAQ entries, compresses the editorial checklist to the
relevant sections, and drives batched generation across a pool of model
backends with rate-limit failover.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Init(cfg.Logger.Level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zl := logger.Get()

		store := corpus.NewStore(cfg.Corpus.EmbeddingsPath, zl)
		shared = &app{
			cfg:        cfg,
			logger:     zl,
			store:      store,
			compressor: checklist.NewCompressor(zl),
			analyzer:   style.NewAnalyzer(zl),
			embedder: embed.NewLazy(func() (embed.Embedder, error) {
				return embed.NewOpenAIClient(&cfg.Embedding)
			}, zl),
		}

		kvStore, err := shared.openKV()
		if err != nil {
			return err
		}
		shared.kvStore = kvStore
		shared.answers = cache.New(kvStore, cfg.Cache.FreshTTL, cfg.Cache.GCTTL, zl)

		// The sqlite cache persists across runs, so stale entries are swept
		// on startup. A failed sweep is not worth aborting the command over.
		if cfg.Cache.Driver == "sqlite" {
			if removed, err := shared.answers.GC(); err != nil {
				zl.Warn("Startup cache sweep failed", zap.Error(err))
			} else if removed > 0 {
				zl.Info("Startup cache sweep", zap.Int("removed", removed))
			}
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if shared != nil && shared.kvStore != nil {
			shared.kvStore.Close()
		}
		logger.Sync()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) openKV() (kv.Store, error) {
	switch a.cfg.Cache.Driver {
	case "memory":
		return kv.NewMemoryStore(a.cfg.Cache.MaxBytes), nil
	case "sqlite":
		store, err := kv.NewSQLiteStore(a.cfg.Cache.Path, a.cfg.Cache.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", a.cfg.Cache.Driver)
	}
}

// buildGenerator wires the full pipeline, including the backend pool and the
// checklist document.
func (a *app) buildGenerator(ctx context.Context) (*generate.Generator, error) {
	descriptors, err := config.LoadBackends(a.cfg.Generate.BackendsFile)
	if err != nil {
		return nil, err
	}

	backends := make([]*generate.Backend, 0, len(descriptors))
	for _, desc := range descriptors {
		completer, err := a.buildCompleter(ctx, desc)
		if err != nil {
			a.logger.Warn("Skipping backend",
				zap.String("backend", desc.Name),
				zap.Error(err),
			)
			continue
		}
		backends = append(backends, generate.NewBackend(desc, completer))
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no usable backends: check API keys and %s", a.cfg.Generate.BackendsFile)
	}

	checklistDoc, err := os.ReadFile(a.cfg.Corpus.ChecklistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}

	lexical, err := a.buildLexicalIndex()
	if err != nil {
		a.logger.Warn("Lexical fallback unavailable", zap.Error(err))
	}

	return generate.NewGenerator(
		a.store,
		a.embedder,
		lexical,
		a.compressor,
		a.analyzer,
		a.answers,
		generate.NewPool(backends, a.logger),
		generate.Config{
			TopK:           a.cfg.Generate.TopK,
			BatchSize:      a.cfg.Generate.BatchSize,
			Cooldown:       a.cfg.Generate.Cooldown,
			RequestTimeout: a.cfg.Generate.RequestTimeout,
			ChecklistDoc:   string(checklistDoc),
		},
		a.logger,
	), nil
}

func (a *app) buildCompleter(ctx context.Context, desc config.BackendDescriptor) (llm.Completer, error) {
	switch desc.Provider {
	case "groq":
		endpoint := desc.Endpoint
		if endpoint == "" {
			endpoint = llm.GroqEndpoint
		}
		return llm.NewChatClient(endpoint, a.cfg.Generate.GroqAPIKey, a.logger)
	case "openrouter":
		return llm.NewOpenRouterClient(a.cfg.Generate.OpenRouterKey, a.logger)
	case "gigachat":
		return llm.NewGigaChatClient(ctx, a.cfg.Generate.GigaChatKey, a.cfg.Generate.GigaChatScope, a.logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", desc.Provider)
	}
}

func (a *app) buildLexicalIndex() (*corpus.LexicalIndex, error) {
	entries, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return corpus.NewLexicalIndex(entries, a.logger)
}

// readSourceText reads the source document from the file argument, or from
// stdin when the argument is "-" or absent.
func readSourceText(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read source text: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
