package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contabhub/onety-sub018/internal/config"
	"github.com/contabhub/onety-sub018/internal/database"
	"github.com/contabhub/onety-sub018/internal/events"
	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/handlers"
	"github.com/contabhub/onety-sub018/internal/media"
	"github.com/contabhub/onety-sub018/internal/middleware"
	"github.com/contabhub/onety-sub018/internal/queue"
	"github.com/contabhub/onety-sub018/internal/realtime"
	"github.com/contabhub/onety-sub018/internal/repositories"
	"github.com/contabhub/onety-sub018/internal/services"
	"github.com/contabhub/onety-sub018/internal/webhooks"
	"github.com/contabhub/onety-sub018/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// =========================================================================
	// Load configuration
	// =========================================================================
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Logger
	// =========================================================================
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// =========================================================================
	// Database
	// =========================================================================
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Auto migrate in development mode
	if cfg.App.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			log.Warn("auto migrate failed", zap.Error(err))
		} else {
			log.Info("database auto migration completed")
		}
	}

	// =========================================================================
	// Repositories
	// =========================================================================
	companyRepo := repositories.NewCompanyRepository(db)
	instanceRepo := repositories.NewInstanceRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	subscriptionRepo := repositories.NewWebhookSubscriptionRepository(db)
	deliveryRepo := repositories.NewWebhookDeliveryRepository(db)

	log.Info("repositories initialized")

	// =========================================================================
	// Gateway Registry
	// =========================================================================
	registry := gateway.NewRegistry()

	zapi := gateway.NewZAPINormalizer()
	registry.Register(zapi)
	log.Info("registered gateway", zap.String("name", zapi.Name()))

	evolution := gateway.NewEvolutionNormalizer()
	registry.Register(evolution)
	log.Info("registered gateway", zap.String("name", evolution.Name()))

	// =========================================================================
	// Media Resolution Chain
	// =========================================================================
	store := media.NewStoreClient(cfg.Media.StoreURL, cfg.Media.APIKey, log)
	decrypter := media.NewDecryptClient(cfg.Decrypt.URL, cfg.Decrypt.APIKey, cfg.Decrypt.Timeout, log)
	chain := media.NewChain(store, decrypter, log)

	log.Info("media chain initialized", zap.String("store_url", cfg.Media.StoreURL))

	// =========================================================================
	// Task Queue (delivery worker wake)
	// =========================================================================
	var enqueuer queue.Enqueuer
	if cfg.Redis.URL != "" {
		asynqEnqueuer, err := queue.NewAsynqEnqueuer(cfg.Redis.URL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		enqueuer = asynqEnqueuer
		log.Info("task queue initialized")
	} else {
		enqueuer = queue.NoopEnqueuer{}
		log.Warn("redis not configured, delivery worker relies on its sweep timer")
	}
	defer enqueuer.Close()

	// =========================================================================
	// Realtime Publisher
	// =========================================================================
	var publisher realtime.Publisher
	if cfg.Socket.URL != "" {
		publisher = realtime.NewSocketClient(cfg.Socket.URL, cfg.Socket.APIKey, log)
		log.Info("socket publisher initialized", zap.String("url", cfg.Socket.URL))
	} else {
		publisher = realtime.NoopPublisher{}
		log.Warn("socket bridge not configured, using noop publisher")
	}

	// =========================================================================
	// Services
	// =========================================================================
	resolver := services.NewContactResolver(contactRepo, log)
	router := services.NewConversationRouter(conversationRepo, instanceRepo, resolver, publisher, log)
	builder := events.NewBuilder(instanceRepo, companyRepo, contactRepo, log)
	fanout := webhooks.NewFanout(subscriptionRepo, deliveryRepo, enqueuer, log)

	ingestService := services.NewIngestService(
		instanceRepo,
		conversationRepo,
		messageRepo,
		router,
		chain,
		builder,
		fanout,
		publisher,
		log,
	)

	log.Info("services initialized")

	// =========================================================================
	// Handlers
	// =========================================================================
	webhookHandler := handlers.NewWebhookHandler(registry, ingestService, log)

	// =========================================================================
	// Gin Router
	// =========================================================================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"service":  cfg.App.Name,
			"gateways": registry.Names(),
		})
	})

	api := engine.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// Gateway webhooks (public; gateways do not authenticate)
		webhookHandler.RegisterRoutes(api)
	}

	log.Info("routes registered", zap.Strings("gateways", registry.Names()))

	// =========================================================================
	// HTTP Server
	// =========================================================================
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// =========================================================================
	// Graceful Shutdown
	// =========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
