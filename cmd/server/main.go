package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"core/internal/config"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("JoSAA College Predictor")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Load cutoff data into the in-memory record store
	store, err := repository.LoadStore(cfg.Data.Dir, cfg.Data.MarksFile)
	if err != nil {
		log.Fatalf("Failed to load cutoff data: %v", err)
	}
	log.Printf("✅ Record store loaded (rounds available: %v)", store.Rounds())

	// Initialize OpenAI-compatible client
	var aiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		aiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("✅ AI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Timeout: %ds", cfg.OpenAI.Timeout)
	} else {
		log.Println("⚠️  AI is disabled - the chat assistant will answer with a fixed message")
		log.Println("   Set OPENAI_API_KEY environment variable to enable chat")
	}

	// Initialize services
	predictor := service.NewPredictor(store)
	var chatClient service.ChatClient
	if aiClient != nil {
		chatClient = aiClient
	}
	chatPipeline := service.NewChatPipeline(chatClient, store, cfg.Chat)

	log.Println("✅ Services initialized")

	// Initialize handlers
	predictHandler := handler.NewPredictHandler(predictor)
	chatHandler := handler.NewChatHandler(chatPipeline)
	metaHandler := handler.NewMetaHandler(store)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "college-predictor",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/predict", predictHandler.Predict)
		apiV1.POST("/chat", chatHandler.Chat)

		apiV1.GET("/categories", metaHandler.Categories)
		apiV1.GET("/quotas", metaHandler.Quotas)
		apiV1.GET("/programs", metaHandler.Programs)
		apiV1.GET("/stats", metaHandler.Stats)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
