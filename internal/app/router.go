package app

import (
	"maang_tracker_backend/docs"
	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/middleware"

	"maang_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)

		// evidence ingestion
		ingest := authGroup.Group("/ingest")
		{
			ingest.POST("/attempts", c.ingest.IngestAttempt)
			ingest.POST("/follow-ups", c.ingest.IngestFollowUp)
			ingest.POST("/study", c.ingest.IngestStudy)
		}
		authGroup.POST("/classify", c.ingest.Classify)
		authGroup.GET("/events", c.ingest.ListEvents)

		// analytics reads
		authGroup.GET("/weakness-profile", c.analytics.WeaknessProfile)
		authGroup.GET("/roadmap", c.analytics.Roadmap)
		authGroup.GET("/summary", c.analytics.Summary)
		authGroup.POST("/mastery/rebuild", c.analytics.RebuildMastery)

		// daily tasks
		authGroup.GET("/daily-tasks", c.dailyTask.TasksForDay)
		authGroup.POST("/daily-tasks/:problemId/complete", c.dailyTask.CompleteTask)

		// dashboard
		authGroup.GET("/dashboard", c.dashboard.Overview)

		// mock interviews and mentor
		authGroup.POST("/interviews", c.interview.Start)
		authGroup.GET("/interviews", c.interview.History)
		authGroup.POST("/interviews/:sessionId/submit", c.interview.Submit)
		authGroup.POST("/interviews/:sessionId/finish", c.interview.Finish)
		authGroup.POST("/mentor/ask", c.interview.MentorAsk)

		// exports
		authGroup.GET("/export/progress", c.export.ProgressCSV)
	}
}
