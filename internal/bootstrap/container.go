package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/handler"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/blob"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/studio"
	"ai-docchat-be/pkg/vectorstore"
	"ai-docchat-be/pkg/vectorstore/pgvector"
	"ai-docchat-be/pkg/vectorstore/qdrant"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	StudioController   controller.IStudioController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus (in-process ingest pipeline)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Blob storage
	blobStore, err := blob.NewMinioStore(ctx, blob.Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
	}, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob storage: %v", err)
	}

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.EmbeddingDimension,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Vector index backend
	var index vectorstore.Index
	if cfg.Vector.Backend == "pgvector" {
		index = pgvector.NewStorage(db)
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	} else {
		index = qdrant.NewStorage(qdrant.Config{
			URL:    cfg.Vector.QdrantURL,
			APIKey: cfg.Vector.QdrantAPIKey,
		})
		log.Printf("[INFO] Using Vector Backend: QDRANT (%s)", cfg.Vector.QdrantURL)
	}

	vectorManager, err := vectorstore.NewManager(ctx, index, embeddingProvider, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize vector store manager: %v", err)
	}

	synthesizer := answer.NewSynthesizer(llmProvider, cfg.Ai.OutputLanguage, sysLogger)

	var reranker *rerank.Reranker
	if cfg.Ai.RerankEnabled && cfg.Ai.JinaAPIKey != "" {
		apiKey, model := cfg.Ai.JinaAPIKey, cfg.Ai.RerankModel
		reranker = rerank.New(func() (rerank.Scorer, error) {
			return rerank.NewJinaScorer(apiKey, model), nil
		}, sysLogger)
		log.Printf("[INFO] Reranking enabled")
	}

	// Studio generation workers
	quizGenerator := studio.NewQuizGenerator(llmProvider, sysLogger)
	flashcardGenerator := studio.NewFlashcardGenerator(llmProvider, sysLogger)
	pool, err := ants.NewPool(cfg.Studio.Workers)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize studio worker pool: %v", err)
	}

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		uowFactory,
		blobStore,
		vectorManager,
		sysLogger,
	)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		blobStore,
		vectorManager,
		sysLogger,
	)

	chatbotService := service.NewChatbotService(
		uowFactory,
		vectorManager,
		reranker,
		synthesizer,
		sysLogger,
	)

	studioService := service.NewStudioService(
		uowFactory,
		blobStore,
		quizGenerator,
		flashcardGenerator,
		natsPub,
		pool,
		sysLogger,
	)

	// Notification Domain
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		ChatController:      controller.NewChatController(chatbotService),
		DocumentController:  controller.NewDocumentController(documentService),
		StudioController:    controller.NewStudioController(studioService),

		ConsumerService: consumerService,
	}
}
