package app

import (
	"ai_sensei_backend/internal/config"
	"ai_sensei_backend/internal/middleware"
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes: no login required. The Telegram webhook authenticates
	// by URL secrecy, the way the Bot API expects.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/telegram/webhook", c.telegram.Webhook)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		// Student side: catalogue, lesson content, chat and quizzes.
		authGroup.GET("/lessons", c.lesson.Catalogue)
		authGroup.GET("/lessons/:id", c.lesson.Get)
		authGroup.GET("/lessons/:id/chat", c.chat.Session)
		authGroup.POST("/lessons/:id/chat", c.chat.SendMessage)
		authGroup.POST("/lessons/:id/chat/escalate", c.chat.Escalate)
		authGroup.POST("/lessons/:id/quiz/submit", c.chat.SubmitQuiz)

		// Professor side: authoring and student oversight.
		professor := authGroup.Group("/professor")
		professor.Use(middleware.RoleMiddleware(model.Professor))
		{
			professor.GET("/lessons", c.lesson.List)
			professor.POST("/lessons", c.lesson.Create)
			professor.PUT("/lessons/:id", c.lesson.Update)
			professor.DELETE("/lessons/:id", c.lesson.Delete)

			professor.GET("/lessons/:id/sources", c.source.List)
			professor.POST("/lessons/:id/sources", c.source.Upload)
			professor.DELETE("/lessons/:id/sources/:name", c.source.Delete)
			professor.POST("/lessons/:id/sources/analyze", c.authoring.AnalyzeSourceFile)

			professor.POST("/lessons/:id/study-text", c.authoring.GenerateStudyText)
			professor.POST("/lessons/:id/study-text/refine", c.authoring.RefineStudyText)
			professor.POST("/lessons/:id/quiz", c.authoring.GenerateQuiz)
			professor.POST("/lessons/:id/final-test", c.authoring.GenerateFinalTest)
			professor.POST("/lessons/:id/presentation", c.authoring.GeneratePresentation)

			professor.GET("/lessons/:id/students", c.student.ListInteractions)
			professor.GET("/lessons/:id/students/:studentId/chat", c.student.Session)
			professor.POST("/lessons/:id/students/:studentId/reply", c.student.Reply)
			professor.POST("/lessons/:id/students/:studentId/analyze", c.student.Analyze)

			professor.GET("/files", c.source.ListGlobal)
			professor.POST("/files", c.source.UploadGlobal)
			professor.DELETE("/files/:name", c.source.DeleteGlobal)
			professor.POST("/files/content", c.source.Content)
		}
	}
}
