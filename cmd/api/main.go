package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/auth"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/config"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/credentials"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/gateway"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/metrics"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/orchestration"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"

	_ "github.com/stratten/Collaborative-LLM-Refinement/docs" // swagger docs
)

// @title Collaborative LLM Refinement API
// @version 1.0
// @description Multi-model prompt refinement API. Orchestrates iterative
// @description critique/improve cycles across OpenAI and Anthropic models with
// @description dynamic model handoff and a final review pass.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if err := initTracer(); err != nil {
		logrus.Fatalf("Failed to initialize tracer: %v", err)
	}

	// Model catalog
	reg := registry.New()
	if cfg.ModelCatalogPath != "" {
		reg, err = registry.NewFromFile(cfg.ModelCatalogPath)
		if err != nil {
			logrus.Fatalf("Failed to load model catalog: %v", err)
		}
		logrus.WithField("path", cfg.ModelCatalogPath).Info("Loaded model catalog from file")
	}

	// Provider credentials, seeded from the environment when present
	credStore := credentials.NewStore()
	seed := make(map[registry.Provider]string)
	if cfg.OpenAIAPIKey != "" {
		seed[registry.ProviderOpenAI] = cfg.OpenAIAPIKey
	}
	if cfg.AnthropicAPIKey != "" {
		seed[registry.ProviderAnthropic] = cfg.AnthropicAPIKey
	}
	if len(seed) > 0 {
		accepted := credStore.Set(seed)
		logrus.WithField("providers", accepted).Info("Seeded provider credentials from environment")
	}

	generationService := generation.NewService(reg, credStore, cfg.OpenAIBaseURL, cfg.AnthropicBaseURL)
	analyzer := analysis.NewAnalyzer(generationService)

	refinementMetrics, err := metrics.NewRefinementMetrics()
	if err != nil {
		logrus.Fatalf("Failed to initialize metrics: %v", err)
	}

	sessionStore := orchestration.NewInMemoryStore()
	engine := orchestration.NewEngine(sessionStore, generationService, analyzer, refinementMetrics)

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		logrus.Fatalf("Failed to initialize JWT manager: %v", err)
	}

	hub := gateway.NewProgressHub()
	gatewayHandler := gateway.NewHandler(engine, generationService, credStore, jwtManager, hub, cfg.AdminUsername, cfg.AdminPasswordHash)

	// Setup Gin router
	router := gin.Default()
	router.Use(requestLoggingMiddleware())

	// Health checks at the root
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		// Ready once at least one provider credential is configured
		if len(credStore.ConfiguredProviders()) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "no provider credentials configured",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Swagger documentation (public)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api")

	// Public routes (no authentication required)
	api.POST("/auth/login", gatewayHandler.Login)

	// Protected routes (require JWT authentication)
	protected := api.Group("")
	protected.Use(auth.RequireAuth(jwtManager))

	protected.POST("/credentials", gatewayHandler.SetCredentials)
	protected.GET("/models", gatewayHandler.ListModels)
	protected.POST("/refinements", gatewayHandler.StartRefinement)
	protected.POST("/refinements/:id/clarifications", gatewayHandler.SubmitClarification)

	// WebSocket routes (authenticated via token query parameter)
	protected.GET("/ws/refinements/:id", hub.StreamProgress)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // refinement runs are synchronous and provider-bound
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Starting Collaborative LLM Refinement API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}

// requestLoggingMiddleware logs every request with method, path, status and latency
func requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		if username, ok := c.Get("username"); ok {
			entry = entry.WithField("username", username)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		entry.Info("request")
	}
}
