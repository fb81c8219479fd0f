package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"taskorganizer/internal/services"
)

type SuggestHandler struct {
	service services.SuggestService
}

func NewSuggestHandler(service services.SuggestService) *SuggestHandler {
	return &SuggestHandler{service: service}
}

// POST /ai/suggest
func (h *SuggestHandler) Suggest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	// body is optional: an empty context yields defaults
	var sctx *services.SuggestionContext
	if c.Request.ContentLength > 0 {
		sctx = &services.SuggestionContext{}
		if err := c.ShouldBindJSON(sctx); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	suggestion, err := h.service.Suggest(c.Request.Context(), userID, sctx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("suggest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute suggestions"})
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
