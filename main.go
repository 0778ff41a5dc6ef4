// File: tempobook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempobook/config"
	croncfg "tempobook/cron"
	"tempobook/database"
	recordsRepo "tempobook/database/repository/records"
	"tempobook/handlers"
	"tempobook/middleware"
	"tempobook/routes"
	"tempobook/services/availability"
	"tempobook/services/booking"
	"tempobook/services/conversation"
	"tempobook/services/dialogue"
	"tempobook/services/session"
	"tempobook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitConversationCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Remote scheduling API client.
	apiClient := availability.NewHTTPClient(
		config.AppConfig.TempoBookAPIBase,
		config.AppConfig.TempoBookAPIToken,
		time.Duration(config.AppConfig.TempoBookAPITimeoutSec)*time.Second,
		logger,
	)

	// Per-conversation state.
	catalogTTL := time.Duration(config.AppConfig.ServiceCatalogTTLMin) * time.Minute
	sessionCache := session.NewCache(
		config.AppConfig.SessionCapacity,
		time.Duration(config.AppConfig.SessionIdleMinutes)*time.Minute,
		func() *booking.Orchestrator {
			return booking.NewOrchestrator(apiClient, catalogTTL, logger)
		},
		logger,
	)

	conversationStore := conversation.NewRedisStore(
		utils.GetConversationCacheClient(),
		time.Duration(config.AppConfig.ConversationTTLMin)*time.Minute,
		int64(config.AppConfig.ConversationLogLength),
	)

	recRepo := recordsRepo.NewMongoRecordRepo()

	responder, err := dialogue.NewGeminiResponder(context.Background(), config.AppConfig.GeminiAPIKey)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini responder: %v", err)
	}

	dialogueSvc := dialogue.NewService(
		sessionCache,
		conversationStore,
		recRepo,
		responder,
		config.AppConfig.ConversationWindow,
		logger,
	)

	chatHandler := handlers.NewChatHandler(dialogueSvc, logger)
	historyHandler := handlers.NewRecordsHandler(recRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		HandleChat:        chatHandler.HandleChat,
		GetBookingHistory: historyHandler.GetBookingHistory,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background maintenance.
	janitor := croncfg.StartSessionJanitor(sessionCache, logger)
	defer janitor.Stop()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetConversationCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
