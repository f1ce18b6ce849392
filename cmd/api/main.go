package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/agent"
	"github.com/youssefmaimouni/can2025-chat/internal/api/handlers"
	"github.com/youssefmaimouni/can2025-chat/internal/embedding"
	"github.com/youssefmaimouni/can2025-chat/internal/llm"
	"github.com/youssefmaimouni/can2025-chat/internal/metrics"
	"github.com/youssefmaimouni/can2025-chat/internal/middleware/ratelimit"
	"github.com/youssefmaimouni/can2025-chat/internal/middleware/security"
	"github.com/youssefmaimouni/can2025-chat/internal/middleware/validation"
	"github.com/youssefmaimouni/can2025-chat/internal/query"
	"github.com/youssefmaimouni/can2025-chat/internal/storage/sqlite"
	"github.com/youssefmaimouni/can2025-chat/internal/vector"
	"github.com/youssefmaimouni/can2025-chat/pkg/config"
	appLogger "github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting AFCON 2025 chat API server")

	metrics.Init()

	store := sqlite.NewStore(cfg.SQLite.Path)
	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	embedder, err := embedding.NewOpenAIEmbedder(
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		cfg.Embedding.BatchSize,
	)
	if err != nil {
		appLogger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	// The index/document pair is loaded once and shared read-only by every
	// request. When the artifacts are missing or inconsistent the server
	// still starts, answering from the match database alone.
	index, documents, _, err := vector.Load(cfg.Index.IndexPath, cfg.Index.DocumentsPath)
	if err != nil {
		appLogger.Warn("Semantic index unavailable, continuing with structured answers only",
			zap.String("index", cfg.Index.IndexPath),
			zap.String("documents", cfg.Index.DocumentsPath),
			zap.Error(err),
		)
	}
	retriever := vector.NewRetriever(embedder, index, documents, cfg.RAG.TopK)

	llmClient := llm.NewClient(
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	router := agent.NewRouter(llmClient)
	synthesizer := agent.NewSynthesizer(llmClient)
	engine := query.NewEngine(router, synthesizer, store, retriever, cfg.RAG.TopK)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 30,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	askHandler := handlers.NewAskHandler(engine)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/ask", askHandler.HandleAsk)
	api.Get("/ask/history", askHandler.GetHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"rag_ready": retriever.Ready(),
			"time":      time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if _, err := store.ExecuteQuery(c.Context(), "SELECT 1"); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "ready",
			"rag_ready": retriever.Ready(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/ask", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
