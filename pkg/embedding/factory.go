package embedding

import (
	"fmt"

	"github.com/sam-evolv/property-assistant-sub010/internal/config"
)

func NewProvider(cfg config.AIConfig) (EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case "ollama":
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.EmbeddingModel), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY is required for embedding provider %q", cfg.EmbeddingProvider)
		}
		return NewGeminiProvider(cfg.GeminiKey), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for embedding provider %q", cfg.EmbeddingProvider)
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}
