package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-allocator/config"
	"parking-allocator/internal/metrics"
	"parking-allocator/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, mw.ClientIP)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter, mw.FlushOnWrite(cacheStore))
	{
		api.POST("/entries", h.PostEntry)
		api.POST("/exits", h.PostExit)
		api.GET("/users/:id/status", h.GetUserStatus)

		api.GET("/spots", h.GetSpots)
		api.POST("/spots", h.PostSpot)
		api.PATCH("/spots/:id", h.PatchSpot)
		api.DELETE("/spots/:id", h.DeleteSpot)

		api.GET("/segments", h.GetSegments)
		api.PUT("/segments", h.PutSegment)
		api.DELETE("/segments", h.DeleteSegments)

		api.GET("/map", caching, h.GetMap)
		api.GET("/route", h.GetRoute)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
