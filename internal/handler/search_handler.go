package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/model"
	"github.com/rmedina/placepix/internal/provider"
)

// SearchHandler exposes one-shot provider searches.
type SearchHandler struct {
	registry provider.Resolver
	logger   *zap.Logger
}

// NewSearchHandler creates a SearchHandler over the provider registry.
func NewSearchHandler(registry provider.Resolver, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{registry: registry, logger: logger}
}

// Search performs a single page fetch against one provider.
// Route: GET /api/v1/search?q=paris+france&provider=pixabay&page=1&per_page=18
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	name := c.DefaultQuery("provider", string(model.DefaultProvider))
	if !model.ValidProvider(name) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid provider: must be pixabay, unsplash, or pexels",
		})
		return
	}
	p, err := h.registry.ForName(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "18"))
	if err != nil || perPage < 1 || perPage > 80 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be between 1 and 80"})
		return
	}

	result, err := p.Search(c.Request.Context(), query, page, perPage)
	if err != nil {
		h.logger.Warn("search failed",
			zap.String("provider", name),
			zap.String("query", query),
			zap.Error(err),
		)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  result.Total,
		"images": result.Results,
	})
}
