package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers every endpoint on router. Request deadlines apply to
// everything except the long-lived summary stream and /metrics.
func SetupRoutes(router *gin.Engine, s *Server) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/summary-stream", s.SummaryStream)

	bounded := router.Group("/", Deadline(s.deps.RequestTimeout))
	{
		bounded.GET("/health", s.Health)
		bounded.GET("/schema", s.Schema)
		bounded.GET("/properties", s.Properties)
		bounded.GET("/years", s.Years)
		bounded.GET("/graph", s.Graph)
		bounded.GET("/dashboard/metrics", s.DashboardMetrics)
		bounded.POST("/update-summary", s.UpdateSummary)

		chainGroup := bounded.Group("/business-chain")
		{
			chainGroup.GET("/counts", s.ChainCounts)
			chainGroup.GET("/diagnostics", s.ChainDiagnostics)
			chainGroup.GET("/integrity", s.ChainIntegrity)
		}
	}
}
