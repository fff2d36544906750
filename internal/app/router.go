package app

import (
	"lpd_backend/docs"
	"lpd_backend/internal/config"
	"lpd_backend/internal/middleware"
	"lpd_backend/internal/model"
	"lpd_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// LTI launches arrive as form posts from the host platform, signed with
	// the consumer secret instead of a session token.
	router.POST("/lti/launch", c.auth.LTILaunch)

	// Learner routes.
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.POST("/submissions", c.submission.Submit)
		authGroup.GET("/profile", c.profile.GetDefaultProfile)
		authGroup.GET("/profile/:id", c.profile.GetProfile)
		authGroup.POST("/profile/:id/export", c.export.Export)
		authGroup.GET("/exports", c.export.ListExports)
	}

	// Admin routes.
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/dashboards", c.dashboard.CreateDashboard)
		admin.GET("/dashboards", c.dashboard.ListDashboards)
		admin.GET("/dashboards/:id", c.dashboard.GetDashboard)
		admin.DELETE("/dashboards/:id", c.dashboard.DeleteDashboard)
		admin.GET("/dashboards/:id/knowledge-components", c.dashboard.ListKnowledgeComponents)

		admin.POST("/sections", c.dashboard.CreateSection)

		admin.POST("/questions/qualitative", c.dashboard.CreateQualitativeQuestion)
		admin.POST("/questions/quantitative/:kind", c.dashboard.CreateQuantitativeQuestion)

		admin.POST("/answer-options", c.dashboard.CreateAnswerOption)
		admin.POST("/knowledge-components", c.dashboard.CreateKnowledgeComponent)
	}
}
