package http

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/internal/domain"
	"github.com/outfitlens/backend/internal/usecase"
)

const maxMessageLength = 500

// Recommender produces outfit recommendations for a shopper message
type Recommender interface {
	Recommend(ctx context.Context, message string, limit int) usecase.RecommendResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
}

// NewHandler creates a new HTTP handler. A nil recommender makes the
// recommendation endpoint answer 501.
func NewHandler(recommender Recommender) *Handler {
	return &Handler{recommender: recommender}
}

// RecommendRequest is the body of POST /api/v1/outfits/recommend
type RecommendRequest struct {
	Message string `json:"message" binding:"required"`
	Limit   int    `json:"limit"`
}

// RecommendResponse is the body returned for a recommendation
type RecommendResponse struct {
	Outfits  []domain.OutfitCandidate `json:"outfits"`
	Keywords domain.KeywordBundle     `json:"keywords"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "outfitlens-backend",
		"version": "1.0.0",
	})
}

// RecommendOutfits handles outfit recommendation requests
func (h *Handler) RecommendOutfits(c *gin.Context) {
	if h.recommender == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Outfit recommendations not configured",
		})
		return
	}

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrInvalidRequest.Error() + ": message is required",
		})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrInvalidRequest.Error() + ": message must not be blank",
		})
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrInvalidRequest.Error() + ": message is too long",
		})
		return
	}

	ctx := c.Request.Context()
	result := h.recommender.Recommend(ctx, req.Message, req.Limit)

	outfits := result.Outfits
	if outfits == nil {
		outfits = []domain.OutfitCandidate{}
	}

	log.Ctx(ctx).Debug().
		Str("component", "handler").
		Int("outfits", len(outfits)).
		Msg("recommendation served")

	c.JSON(http.StatusOK, RecommendResponse{
		Outfits:  outfits,
		Keywords: result.Keywords,
	})
}
