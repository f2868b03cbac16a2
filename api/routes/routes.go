package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/api"
)

// Pinger reports whether the post store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup registers all HTTP routes
func Setup(h *api.Handler, store Pinger, backend string) *gin.Engine {
	router := gin.Default()

	router.GET("/", rootHandler)
	router.GET("/health", healthHandler)
	router.GET("/health/deep", deepHealthHandler(store, backend))

	// v1 API routes
	v1 := router.Group("/v1")
	{
		v1.POST("/invoke", h.Invoke)
		v1.POST("/posts", h.PostNow)
		v1.POST("/sweep", h.Sweep)

		scheduled := v1.Group("/scheduled")
		{
			scheduled.POST("", h.Schedule)
			scheduled.GET("", h.List)
			scheduled.PUT("/:date", h.Reschedule)
			scheduled.DELETE("/:date", h.Delete)
		}

		track := v1.Group("/track")
		{
			track.GET("/attempts", h.TrackAttempts)
		}
	}

	return router
}

func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "tweetsched - scheduled posts for Twitter")
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func deepHealthHandler(store Pinger, backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"checks": gin.H{
					backend: "unreachable",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"checks": gin.H{
				backend: "healthy",
			},
		})
	}
}
