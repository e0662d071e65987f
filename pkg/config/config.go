package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Corpus    CorpusConfig
	Embedding EmbeddingConfig
	Cache     CacheConfig
	Generate  GenerateConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type CorpusConfig struct {
	EmbeddingsPath string
	ChecklistPath  string
}

type EmbeddingConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	// Dimensions is advisory; the corpus file is the source of truth for D.
	Dimensions int
	Timeout    time.Duration
}

type CacheConfig struct {
	Driver   string // "memory" | "sqlite"
	Path     string
	FreshTTL time.Duration
	GCTTL    time.Duration
	MaxBytes int64
}

type GenerateConfig struct {
	TopK           int
	BatchSize      int
	Cooldown       time.Duration
	RequestTimeout time.Duration
	BackendsFile   string
	GroqAPIKey     string
	OpenRouterKey  string
	GigaChatKey    string
	GigaChatScope  string
}

func Load() (*Config, error) {
	// .env is optional; environment variables alone are enough (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	freshTTL, _ := strconv.Atoi(getEnv("CACHE_FRESH_TTL_HOURS", "24"))
	gcTTL, _ := strconv.Atoi(getEnv("CACHE_GC_TTL_HOURS", "168"))
	maxBytes, _ := strconv.ParseInt(getEnv("CACHE_MAX_BYTES", "0"), 10, 64)
	topK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "5"))
	batchSize, _ := strconv.Atoi(getEnv("GENERATE_BATCH_SIZE", "3"))
	cooldown, _ := strconv.Atoi(getEnv("GENERATE_COOLDOWN_SECONDS", "60"))
	reqTimeout, _ := strconv.Atoi(getEnv("GENERATE_REQUEST_TIMEOUT_SECONDS", "30"))
	embedTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_TIMEOUT_SECONDS", "30"))
	embedDims, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSIONS", "384"))

	return &Config{
		Corpus: CorpusConfig{
			EmbeddingsPath: getEnv("CORPUS_EMBEDDINGS_PATH", "data/faq-embeddings.json"),
			ChecklistPath:  getEnv("CHECKLIST_PATH", "data/checklist.txt"),
		},
		Embedding: EmbeddingConfig{
			APIKey:     getEnv("EMBEDDING_API_KEY", ""),
			Endpoint:   getEnv("EMBEDDING_ENDPOINT", "https://api.openai.com/v1/embeddings"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: embedDims,
			Timeout:    time.Duration(embedTimeout) * time.Second,
		},
		Cache: CacheConfig{
			Driver:   getEnv("CACHE_DRIVER", "sqlite"),
			Path:     getEnv("CACHE_PATH", "data/answer-cache.db"),
			FreshTTL: time.Duration(freshTTL) * time.Hour,
			GCTTL:    time.Duration(gcTTL) * time.Hour,
			MaxBytes: maxBytes,
		},
		Generate: GenerateConfig{
			TopK:           topK,
			BatchSize:      batchSize,
			Cooldown:       time.Duration(cooldown) * time.Second,
			RequestTimeout: time.Duration(reqTimeout) * time.Second,
			BackendsFile:   getEnv("BACKENDS_FILE", "data/backends.yaml"),
			GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
			OpenRouterKey:  getEnv("OPENROUTER_API_KEY", ""),
			GigaChatKey:    getEnv("GIGACHAT_API_KEY", ""),
			GigaChatScope:  getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
