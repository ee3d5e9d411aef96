package bootstrap

import (
	"context"
	"fmt"

	"github.com/sam-evolv/property-assistant-sub010/internal/config"
	"github.com/sam-evolv/property-assistant-sub010/internal/controller"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/implementation"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/internal/service"
	"github.com/sam-evolv/property-assistant-sub010/pkg/ai/router"
	"github.com/sam-evolv/property-assistant-sub010/pkg/embedding"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm/factory"
	pktNats "github.com/sam-evolv/property-assistant-sub010/pkg/nats"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/executor"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/prompt"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/search"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/stream"
	"github.com/sam-evolv/property-assistant-sub010/pkg/vectorstore/pgvector"
	"github.com/sam-evolv/property-assistant-sub010/pkg/vectorstore/weaviate"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Used by the seed command
	IngestService service.IDocumentIngestService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)

	c := &Container{}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	rdb := newRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var broker service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Messaging.NatsStream, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS unavailable, exchange events stay in-process", map[string]interface{}{"error": err.Error()})
	} else {
		broker = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// 4. Model providers
	embeddingProvider, err := embedding.NewProvider(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Model providers ready", map[string]interface{}{
		"embedding": cfg.Ai.EmbeddingProvider,
		"llm":       cfg.Ai.LLMProvider,
		"model":     cfg.Ai.LLMModel,
	})

	vectorStore, err := newVectorStore(db, cfg.Vector)
	if err != nil {
		return nil, err
	}

	// 5. Pipeline
	queryRouter, err := newRouter(cfg, llmProvider, sysLogger)
	if err != nil {
		return nil, err
	}
	registry := functions.NewRegistry(service.NewLiveDataService(uowFactory), cfg.Assistant.AppBaseURL)
	searchClient := search.NewClient(embeddingProvider, vectorStore, search.DefaultConfig(), sysLogger)

	execConfig := executor.DefaultConfig()
	execConfig.FunctionTimeout = cfg.Assistant.FunctionTimeout
	execConfig.RetrievalTimeout = cfg.Assistant.RetrievalTimeout
	execConfig.TopK = cfg.Assistant.TopK
	execConfig.RegulatoryCorpusID = cfg.Assistant.RegulatoryCorpusID
	layerExecutor := executor.NewExecutor(registry, searchClient, execConfig, sysLogger)

	assembler := prompt.NewAssembler(prompt.Config{
		HistoryTurns:     cfg.Assistant.HistoryTurns,
		MaxDocumentChars: cfg.Assistant.MaxDocumentChars,
		MaxPromptChars:   cfg.Assistant.MaxPromptChars,
	}, sysLogger)
	streamer := stream.NewStreamer(llmProvider, sysLogger, stream.WithGenerationOptions(llm.WithMaxTokens(cfg.Ai.MaxTokens)))

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Messaging.ExchangeTopic)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Messaging.ExchangeTopic,
		uowFactory,
		broker,
		cfg.Messaging.RecordAnswers,
		sysLogger,
	)
	c.IngestService = service.NewDocumentIngestService(uowFactory, embeddingProvider, sysLogger)

	assistantService := service.NewAssistantService(service.AssistantDeps{
		Scheme:       service.NewSchemeService(uowFactory, rdb, cfg.Assistant.SchemeCacheTTL, sysLogger),
		Router:       queryRouter,
		Executor:     layerExecutor,
		Assembler:    assembler,
		Streamer:     streamer,
		Publisher:    publisherService,
		UowFactory:   uowFactory,
		ExcerptChars: cfg.Assistant.ExcerptChars,
		Logger:       sysLogger,
	})

	// 7. Controllers
	c.AssistantController = controller.NewAssistantController(assistantService, cfg.Auth.JWTSecret, sysLogger)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// newRedis returns nil when Redis is unreachable; the scheme cache then
// falls back to its in-process layer.
func newRedis(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newVectorStore(db *gorm.DB, cfg config.VectorConfig) (search.VectorStore, error) {
	switch cfg.Store {
	case "weaviate":
		store, err := weaviate.NewStore(cfg.WeaviateHost, cfg.WeaviateScheme, cfg.WeaviateClass)
		if err != nil {
			return nil, fmt.Errorf("weaviate store: %w", err)
		}
		return store, nil
	case "pgvector", "":
		return pgvector.NewStore(implementation.NewDocumentChunkRepository(db), search.DefaultConfig().Threshold), nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Store)
	}
}

func newRouter(cfg *config.Config, llmProvider llm.LLMProvider, log logger.ILogger) (*router.Router, error) {
	rules, err := router.LoadRules(cfg.Assistant.RouterRulesPath)
	if err != nil {
		return nil, fmt.Errorf("router rules: %w", err)
	}
	var opts []router.Option
	if cfg.Ai.UseClassifier {
		opts = append(opts, router.WithClassifier(router.NewLLMClassifier(llmProvider), 0))
	}
	return router.NewRouter(rules, log, opts...)
}
