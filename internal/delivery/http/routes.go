package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Client IPs come from X-Forwarded-For only behind a configured proxy
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).
			Msg("invalid trusted proxies, ignoring forwarded headers")
		_ = router.SetTrustedProxies(nil)
	}

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestLoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		outfits := v1.Group("/outfits")
		{
			outfits.POST("/recommend", handler.RecommendOutfits)
		}
	}

	return router
}
