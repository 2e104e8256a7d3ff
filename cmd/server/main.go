package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/config"
	"aidraw-backend/internal/handlers"
	"aidraw-backend/internal/logging"
	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
	"aidraw-backend/internal/router"
	"aidraw-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ %v", err)
	}

	// ──── Step 2: Logging ────
	if err := logging.Setup(cfg.LogLevel, cfg.LogFile, cfg.IsProduction()); err != nil {
		log.Fatalf("✗ Logging setup failed: %v", err)
	}
	log.Info("🚀 Starting AI draw relay...")
	log.Info("✓ Environment variables loaded")

	// ──── Step 3: Provider Adapters ────
	openAI := services.NewOpenAIProvider(http.DefaultClient)
	registry := services.NewRegistry(
		openAI,
		services.NewAnthropicProvider(cfg.AnthropicMaxTokens),
		services.NewDeepSeekProvider(openAI),
	)
	if cfg.AIAPIKey == "" {
		log.Warn("AI_API_KEY is empty: only callers with their own provider key will succeed")
	}
	log.WithFields(log.Fields{
		"provider": cfg.AIProvider,
		"model":    cfg.AIModelID,
	}).Info("✓ Provider adapters ready")

	// ──── Step 4: Gate, Limiter, Handlers ────
	accessGate := middleware.NewAccessGate(cfg.AccessPassword, cfg.AccessPasswordBcrypt)
	if accessGate.Required() {
		log.Info("✓ Access password required")
	}

	var chatLimiter *middleware.RateLimiter
	if cfg.ChatRateLimit > 0 {
		chatLimiter = middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute)
		defer chatLimiter.Stop()
	}

	chatHandler := handlers.NewChatHandler(registry, cfg.DefaultProvider())
	configHandler := handlers.NewConfigHandler(models.ServerInfo{
		DailyQuota:             cfg.DailyQuota,
		AccessPasswordRequired: accessGate.Required(),
		Provider:               cfg.AIProvider,
		ModelID:                cfg.AIModelID,
	})

	// ──── Step 5: Start HTTP Server ────
	r := router.New(accessGate, chatLimiter, chatHandler, configHandler, cfg.CORSAllowedOrigin)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: streamed replies last as long as the upstream.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("✓ AI draw relay ready on http://localhost:%s", cfg.Port)
	log.Infof("  API: http://localhost:%s/api/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
