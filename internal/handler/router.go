package handler

import "github.com/gin-gonic/gin"

// Handlers bundles the route handlers for registration.
type Handlers struct {
	Students  *StudentHandler
	Modules   *ModuleHandler
	Results   *ResultHandler
	Dashboard *DashboardHandler
	Alerts    *AlertHandler
	Metrics   *MetricsHandler

	ExportsEnabled bool
}

// RegisterRoutes mounts all API routes under the given group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	students := api.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		if h.ExportsEnabled {
			students.GET("/export", h.Students.ExportCSV)
			students.POST("/import", h.Students.ImportCSV)
		}
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
		students.GET("/:id/results", h.Students.Results)
		students.GET("/:id/cgpa-history", h.Students.History)
		students.POST("/:id/recalculate", h.Students.Recalculate)
		if h.ExportsEnabled {
			students.GET("/:id/transcript", h.Students.Transcript)
		}
	}

	modules := api.Group("/modules")
	{
		modules.GET("", h.Modules.List)
		modules.POST("", h.Modules.Create)
		modules.GET("/:id", h.Modules.Get)
		modules.PUT("/:id", h.Modules.Update)
		modules.DELETE("/:id", h.Modules.Delete)
	}

	results := api.Group("/results")
	{
		results.POST("", h.Results.Create)
		results.PUT("/:id", h.Results.Update)
		results.DELETE("/:id", h.Results.Delete)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/metrics", h.Dashboard.Metrics)
		dashboard.GET("/cgpa-trend", h.Dashboard.Trend)
		dashboard.GET("/grade-distribution", h.Dashboard.GradeDistribution)
		dashboard.GET("/at-risk", h.Dashboard.AtRisk)
		dashboard.GET("/insights", h.Dashboard.Insights)
		dashboard.GET("/recent-activity", h.Dashboard.RecentActivity)
		dashboard.POST("/recalculate-all", h.Dashboard.RecalculateAll)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.Alerts.List)
		alerts.POST("", h.Alerts.Create)
		alerts.POST("/:id/resolve", h.Alerts.Resolve)
	}

	if h.Metrics != nil {
		api.GET("/system/status", h.Metrics.Status)
	}
}
