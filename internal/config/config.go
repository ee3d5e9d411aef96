package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	Vector    VectorConfig
	Assistant AssistantConfig
	Messaging MessagingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "openai"
	EmbeddingModel    string
	LLMProvider       string // "ollama", "anthropic" or "openai"
	LLMModel          string // e.g. "llama3", "claude-sonnet-4-5", "gpt-4o-mini"
	OllamaBaseURL     string
	OpenAIBaseURL     string
	OpenAIKey         string
	AnthropicKey      string
	GeminiKey         string
	MaxTokens         int
	UseClassifier     bool
}

type VectorConfig struct {
	Store          string // "pgvector" or "weaviate"
	WeaviateHost   string
	WeaviateScheme string
	WeaviateClass  string
}

type MessagingConfig struct {
	ExchangeTopic string // in-process watermill topic
	NatsStream    string
	RecordAnswers bool
}

type AssistantConfig struct {
	TopK               int
	HistoryTurns       int
	ExcerptChars       int
	MaxDocumentChars   int
	MaxPromptChars     int
	FunctionTimeout    time.Duration
	RetrievalTimeout   time.Duration
	RegulatoryCorpusID string
	RouterRulesPath    string
	AppBaseURL         string
	SchemeCacheTTL     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:      getEnv("ANTHROPIC_API_KEY", ""),
			GeminiKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 1024),
			UseClassifier:     getEnv("ROUTER_LLM_CLASSIFIER", "false") == "true",
		},
		Vector: VectorConfig{
			Store:          getEnv("VECTOR_STORE", "pgvector"),
			WeaviateHost:   getEnv("WEAVIATE_HOST", "localhost:8080"),
			WeaviateScheme: getEnv("WEAVIATE_SCHEME", "http"),
			WeaviateClass:  getEnv("WEAVIATE_CLASS", "DocumentChunk"),
		},
		Assistant: AssistantConfig{
			TopK:               getEnvAsInt("RETRIEVAL_TOP_K", 8),
			HistoryTurns:       getEnvAsInt("HISTORY_TURNS", 10),
			ExcerptChars:       getEnvAsInt("SOURCE_EXCERPT_CHARS", 200),
			MaxDocumentChars:   getEnvAsInt("PROMPT_MAX_DOCUMENT_CHARS", 12000),
			MaxPromptChars:     getEnvAsInt("PROMPT_MAX_CHARS", 32000),
			FunctionTimeout:    getEnvAsDuration("FUNCTION_TIMEOUT", 5*time.Second),
			RetrievalTimeout:   getEnvAsDuration("RETRIEVAL_TIMEOUT", 8*time.Second),
			RegulatoryCorpusID: getEnv("REGULATORY_CORPUS_ID", "regulatory:ie-building-regulations"),
			RouterRulesPath:    getEnv("ROUTER_RULES_PATH", ""),
			AppBaseURL:         getEnv("APP_BASE_URL", ""),
			SchemeCacheTTL:     getEnvAsDuration("SCHEME_CACHE_TTL", 60*time.Second),
		},
		Messaging: MessagingConfig{
			ExchangeTopic: getEnv("EXCHANGE_TOPIC", "assistant.exchange.completed"),
			NatsStream:    getEnv("NATS_STREAM", "EVENTS"),
			RecordAnswers: getEnv("RECORD_ANSWERS", "true") == "true",
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
