package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mduc-2610/doc-agent-mlt/internal/service"
)

type CacheHandler struct {
	embeddings *service.EmbeddingService
	generation *service.GenerationService
}

func NewCacheHandler(embeddings *service.EmbeddingService, generation *service.GenerationService) *CacheHandler {
	return &CacheHandler{embeddings: embeddings, generation: generation}
}

func (h *CacheHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"embedding":  h.embeddings.Stats(),
		"generation": gin.H{"cache_size": h.generation.CacheSize()},
	})
}

func (h *CacheHandler) Clear(c *gin.Context) {
	embeddingCleared := h.embeddings.ClearCache()
	generationCleared := h.generation.ClearCache()

	c.JSON(http.StatusOK, gin.H{
		"embedding_entries_cleared":  embeddingCleared,
		"generation_entries_cleared": generationCleared,
	})
}
