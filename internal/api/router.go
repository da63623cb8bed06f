package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/NoamFav/Laundry/internal/mw"
)

// RouterConfig tunes the middleware applied to /api.
type RouterConfig struct {
	RateLimit rate.Limit
	RateBurst int
	CacheTTL  time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(deps Deps, cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	h := NewHandler(deps)

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = rate.Limit(10)
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	caching := mw.Cache(cache.New(cfg.CacheTTL, 2*cfg.CacheTTL), cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(cfg.RateLimit, cfg.RateBurst))
	{
		api.POST("/login", h.Login)

		// Static catalogs; safe to cache.
		api.GET("/rooms", caching, h.GetRooms)
		api.GET("/programs", caching, h.GetPrograms)

		// Live household state.
		api.GET("/presence", h.GetPresence)
		api.GET("/tasks", h.GetTasks)
		api.GET("/laundry", h.GetLaundry)
		api.GET("/events", h.StreamEvents)
		api.GET("/history/laundry", h.GetLaundryHistory)
		api.GET("/history/tasks", h.GetTaskHistory)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		auth := api.Group("")
		auth.Use(h.RequireAuth)
		{
			auth.POST("/logout", h.Logout)
			auth.POST("/presence/toggle", h.TogglePresence)
			auth.POST("/tasks/kitchens/:kitchen_id/:kind/complete", h.CompleteKitchenTask)
			auth.POST("/tasks/showers/:shower_id/complete", h.CompleteShower)
			auth.POST("/tasks/toilets/:toilet_id/paper", h.SetPaperStatus)
			auth.POST("/laundry/:appliance/request", h.RequestMachine)
			auth.POST("/laundry/:appliance/stop", h.StopMachine)
			auth.GET("/dashboard", h.GetDashboard)
			auth.PUT("/subscriptions", h.PutSubscription)
			auth.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
