package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/compareit/backend/internal/domain"
)

// SearchService is the aggregation entry point the handlers depend on.
type SearchService interface {
	Search(ctx context.Context, query string, sources []string) domain.SearchResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searchService SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(searchService SearchService) *Handler {
	return &Handler{searchService: searchService}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "compareit-backend",
		"version": "1.0.0",
	})
}

// searchRequest is the POST /search body
type searchRequest struct {
	SearchTerm string   `json:"searchTerm" binding:"required"`
	Sources    []string `json:"sources,omitempty"`
}

// Search handles product price-comparison search requests
func (h *Handler) Search(c *gin.Context) {
	if h.searchService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "search service unavailable",
		})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   domain.ErrInvalidQuery.Error(),
		})
		return
	}

	result := h.searchService.Search(c.Request.Context(), req.SearchTerm, req.Sources)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
