package bootstrap

import (
	"context"
	"log"
	"os"

	"ecom-support-be/internal/config"
	"ecom-support-be/internal/controller"
	"ecom-support-be/internal/pkg/logger"
	"ecom-support-be/internal/repository"
	"ecom-support-be/internal/service"
	"ecom-support-be/pkg/cache"
	"ecom-support-be/pkg/commerce"
	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/llm/factory"
	"ecom-support-be/pkg/rag/classify"
	"ecom-support-be/pkg/rag/executor"
	"ecom-support-be/pkg/rag/memory"
	"ecom-support-be/pkg/rag/partition"
	"ecom-support-be/pkg/rag/response"
	"ecom-support-be/pkg/rag/retrieve"

	pktNats "ecom-support-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	PassageController controller.IPassageController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure main.go needs for shutdown
	NatsPublisher *pktNats.Publisher
	AppLogger     logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 2. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		sysLogger.Info("bootstrap", "Using embedding provider: ollama", map[string]interface{}{"model": cfg.Ai.OllamaModel})
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		sysLogger.Info("bootstrap", "Using embedding provider: gemini", nil)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("bootstrap", "Using LLM provider: "+cfg.Ai.LLMProvider, map[string]interface{}{"model": cfg.Ai.LLMModel})

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	var sessionCache cache.Cache
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		// Sessions survive in-process only until Redis comes back
		sysLogger.Warn("bootstrap", "Redis unreachable, falling back to in-memory session cache", map[string]interface{}{"error": err.Error()})
		sessionCache = cache.NewMemoryCache(cfg.Chat.SessionTTL)
	} else {
		sessionCache = cache.NewRedisCache(rdb)
	}

	// 4. Conversational Core
	sessions := memory.NewSessionMemory(sessionCache, llmProvider, cfg.Chat.SessionTTL, ragLogger)
	passageRepo := repository.NewPassageRepository(db, embeddingProvider)
	classifier := partition.NewClassifier(llmProvider, ragLogger)
	engine := retrieve.NewEngine(passageRepo, embeddingProvider, classifier, ragLogger)
	generator := response.NewGenerator(llmProvider, cfg.Chat.CompanyName, ragLogger)
	tags := classify.NewTagExtractor(sessions, ragLogger)

	var followUp classify.FollowUpDetector
	if cfg.Chat.FollowUpStrategy == "regex" {
		followUp = classify.RegexFollowUpDetector{}
	} else {
		followUp = classify.NewLLMFollowUpDetector(llmProvider, ragLogger)
	}

	var cartClient commerce.CartClient
	if cfg.Commerce.BaseURL != "" {
		cartClient = commerce.NewHTTPCartClient(cfg.Commerce.BaseURL, cfg.Commerce.APIKey)
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Chat.TurnTopicName)
	recorder := service.NewBusTurnRecorder(publisherService, ragLogger)

	pipeline := executor.NewPipeline(executor.Config{
		Session:   sessions,
		FollowUp:  followUp,
		Tags:      tags,
		Engine:    engine,
		Generator: generator,
		Cart:      cartClient,
		Recorder:  recorder,
		Platform:  cfg.Commerce.Platform,
		Timeouts:  executor.DefaultTimeouts(),
		Logger:    ragLogger,
	})

	chatService := service.NewChatService(pipeline)
	passageService := service.NewPassageService(passageRepo, ragLogger)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	consumerService := service.NewTurnConsumerService(pubSub, cfg.Chat.TurnTopicName, sessions, eventPublisher)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		PassageController: controller.NewPassageController(passageService),
		ConsumerService:   consumerService,
		NatsPublisher:     natsPub,
		AppLogger:         sysLogger,
	}
}
