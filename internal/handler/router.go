package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mduc-2610/doc-agent-mlt/internal/config"
	"github.com/mduc-2610/doc-agent-mlt/internal/llm"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/repository"
	"github.com/mduc-2610/doc-agent-mlt/internal/service"
	"github.com/mduc-2610/doc-agent-mlt/internal/storage"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*gin.Engine, error) {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Health check endpoints
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":      "Document Agent",
			"version":      "1.0.0",
			"status":       "running",
			"health_check": "/health",
		})
	})

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	flashcardRepo := repository.NewFlashcardRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// Initialize storage
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	// Initialize LLM clients
	embeddingClient := llm.NewEmbeddingClient(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
	)
	chatClient := llm.NewChatClient(
		cfg.GenerationAPIKey,
		cfg.GenerationBaseURL,
		cfg.GenerationModel,
		cfg.GenerationMaxTokens,
		time.Duration(cfg.GenerationTimeoutSecs)*time.Second,
		map[string]string{
			"HTTP-Referer": cfg.GenerationHTTPReferer,
			"X-Title":      cfg.GenerationXTitle,
		},
	)

	// Initialize services
	embeddingSvc := service.NewEmbeddingService(embeddingClient, cfg.EmbeddingCacheSize, cfg.EmbeddingBatchSize, log)
	searchSvc := service.NewVectorSearchService(embeddingSvc, chunkRepo, cfg.RetrievalTopK, cfg.SimilarityThreshold, log)
	generationSvc := service.NewGenerationService(chatClient, cfg.GenerationCacheSize, cfg.QuestionsPerChunk, cfg.FlashcardsPerChunk, log)
	documentSvc := service.NewDocumentService(documentRepo, chunkRepo, summaryRepo, sessionRepo, embeddingSvc, store, log)
	questionSvc := service.NewQuestionService(searchSvc, generationSvc, questionRepo, flashcardRepo, cfg.MaxContextLength, log)
	summarySvc := service.NewSummaryService(documentRepo, summaryRepo, generationSvc, store, log)
	sessionSvc := service.NewSessionService(sessionRepo, questionRepo, flashcardRepo, documentSvc, log)

	// Initialize handlers
	sessionHandler := NewSessionHandler(sessionSvc)
	documentHandler := NewDocumentHandler(documentSvc)
	questionHandler := NewQuestionHandler(questionSvc)
	summaryHandler := NewSummaryHandler(summarySvc)
	retrieveHandler := NewRetrieveHandler(searchSvc)
	cacheHandler := NewCacheHandler(embeddingSvc, generationSvc)

	// API v1
	v1 := r.Group("/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.GET("", sessionHandler.List)
			sessions.POST("", sessionHandler.Create)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.PUT("/:id", sessionHandler.Update)
			sessions.DELETE("/:id", sessionHandler.Delete)
			sessions.GET("/:id/documents", documentHandler.ListBySession)
			sessions.GET("/:id/questions", questionHandler.ListQuestions)
			sessions.GET("/:id/flashcards", questionHandler.ListFlashcards)
			sessions.POST("/:id/generate", questionHandler.GenerateBatch)
		}

		documents := v1.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.POST("/text", documentHandler.UploadText)
			documents.POST("/upload", documentHandler.UploadFile)
			documents.POST("/url", documentHandler.UploadURL)
			documents.GET("/:id", documentHandler.Get)
			documents.GET("/:id/content", documentHandler.Content)
			documents.PUT("/:id", documentHandler.Rename)
			documents.DELETE("/:id", documentHandler.Delete)
			documents.GET("/:id/summary", summaryHandler.Get)
			documents.POST("/:id/summary", summaryHandler.Generate)
		}

		questions := v1.Group("/questions")
		{
			questions.PUT("/:id", questionHandler.UpdateQuestion)
			questions.DELETE("/:id", questionHandler.DeleteQuestion)
		}

		flashcards := v1.Group("/flashcards")
		{
			flashcards.PUT("/:id", questionHandler.UpdateFlashcard)
			flashcards.DELETE("/:id", questionHandler.DeleteFlashcard)
		}

		caches := v1.Group("/caches")
		{
			caches.GET("/stats", cacheHandler.Stats)
			caches.POST("/clear", cacheHandler.Clear)
		}
	}

	// Retrieve endpoint (for agent tool calls)
	r.POST("/retrieve", retrieveHandler.Retrieve)

	return r, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "doc-agent",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
