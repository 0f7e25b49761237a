package app

import (
	"learner_analytics_backend/docs"
	"learner_analytics_backend/internal/middleware"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		// 测评：判分结果回传与能力估计
		authGroup.POST("/assessments/attempts/:attemptId/estimate", c.assessment.Estimate)

		// 分析读路径
		analytics := authGroup.Group("/analytics")
		{
			analytics.GET("/trajectory", c.analytics.GetTrajectory)
			analytics.GET("/velocity", c.analytics.GetVelocity)
			analytics.GET("/study", c.analytics.GetStudy)
			analytics.GET("/risk", c.analytics.GetRisk)

			// 教师视角：查看学生风险
			analytics.GET("/users/:userId/risk",
				middleware.RoleMiddleware(model.Teacher), c.analytics.GetUserRisk)
		}

		// 学习目标
		goals := authGroup.Group("/goals")
		{
			goals.POST("", c.goal.Create)
			goals.GET("", c.goal.List)
			goals.GET("/at-risk", c.goal.AtRisk)
			goals.GET("/:goalId/prediction", c.goal.Prediction)
			goals.PATCH("/:goalId/status", c.goal.UpdateStatus)
		}

		// 学习会话遥测
		sessions := authGroup.Group("/study/sessions")
		{
			sessions.POST("/start", c.session.Start)
			sessions.POST("/:sessionId/end", c.session.End)
		}
	}
}
