package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner/backend/assistant"
	"planner/backend/config"
	"planner/backend/gateway"
	"planner/backend/middleware"
	"planner/backend/routes"
	"planner/backend/store"
	syncpkg "planner/backend/sync"
	"planner/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Redis — эфемерный кэш переписки с ассистентом
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
	})

	profiles := syncpkg.NewRegistry(
		store.NewGormStore(db),
		logger,
		time.Duration(cfg.SyncDebounceMS)*time.Millisecond,
	)
	gate := gateway.New(time.Local)

	var assistantClient assistant.Client
	var convCache *assistant.ConversationCache
	if cfg.AssistantEndpoint != "" {
		assistantClient = assistant.NewHTTPClient(cfg.AssistantEndpoint, cfg.AssistantAPIKey)
		convCache = assistant.NewConversationCache(rdb, 24*time.Hour)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	timers := routes.SetupRoutes(app, routes.Deps{
		DB:        db,
		Cfg:       cfg,
		Profiles:  profiles,
		Gate:      gate,
		Loc:       time.Local,
		Assistant: assistantClient,
		ConvCache: convCache,
		Logger:    logger,
	})

	// Останов: гасим тики и доливаем несохранённые снимки.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		timers.Close()
		profiles.Close()
		_ = app.Shutdown()
	}()

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
