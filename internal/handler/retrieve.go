package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mduc-2610/doc-agent-mlt/internal/service"
)

type RetrieveHandler struct {
	svc *service.VectorSearchService
}

func NewRetrieveHandler(svc *service.VectorSearchService) *RetrieveHandler {
	return &RetrieveHandler{svc: svc}
}

func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req struct {
		Query       string   `json:"query" binding:"required"`
		DocumentIDs []string `json:"document_ids"`
		TopK        int      `json:"top_k"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var documentIDs []uuid.UUID
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id: " + raw})
			return
		}
		documentIDs = append(documentIDs, id)
	}

	results, err := h.svc.Search(c.Request.Context(), req.Query, documentIDs, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}
