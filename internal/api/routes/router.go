package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/internal/api/handlers"
	"github.com/linskybing/regscan/internal/metrics"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.GET("/healthz", handlers.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/scan", h.Hub.ServeWS)

	repos := r.Group("/repositories")
	{
		repos.GET("", h.Repository.List)
		repos.GET("/stats", h.Repository.Stats)
		repos.GET("/analysis", h.Repository.Analysis)
		repos.GET("/never-pulled", h.Repository.NeverPulled)
		repos.GET("/:name", h.Repository.Get)

		repos.POST("/scan", h.Scan.Start)
		repos.GET("/scans", h.Scan.List)
		repos.GET("/scans/:id", h.Scan.Get)
	}
}
