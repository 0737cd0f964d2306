package app

import (
	"ai_study_backend/docs"
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/middleware"
	"ai_study_backend/internal/model"
	"ai_study_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 读路由：游客可访问公开课程，登录用户还能看自己的私有课程
	read := router.Group("/api")
	read.Use(middleware.TryAuthMiddleware(cfg))
	{
		read.GET("/courses", c.course.List)
		read.GET("/courses/:id", c.course.Get)
		read.GET("/courses/:id/tree", c.query.Tree)
		read.GET("/courses/:id/hierarchy", c.query.Hierarchy)
		read.GET("/courses/:id/toc", c.query.TableOfContents)
		read.GET("/courses/:id/search", c.query.Search)
		read.GET("/courses/:id/statistics", c.query.Statistics)
		read.GET("/sections/:id/content", c.content.Get)
	}

	// 写路由：强制认证
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/courses", c.course.Create)
		authGroup.PUT("/courses/:id", c.course.Update)
		authGroup.DELETE("/courses/:id", c.course.Delete)
		authGroup.POST("/courses/:id/fork", c.course.Fork)
		authGroup.POST("/courses/:id/export", c.course.Export)

		authGroup.POST("/sections", c.section.Create)
		authGroup.PUT("/sections/:id", c.section.Update)
		authGroup.DELETE("/sections/:id", c.section.Delete)
		authGroup.POST("/sections/:id/move", c.section.Move)
		authGroup.POST("/sections/reorder", c.section.Reorder)
		authGroup.POST("/sections/:id/duplicate", c.section.Duplicate)
		authGroup.POST("/sections/:id/split", c.section.Split)
		authGroup.POST("/sections/merge", c.section.Merge)
		authGroup.POST("/sections/import", c.section.Import)

		authGroup.PUT("/sections/:id/content", c.content.Update)
		authGroup.POST("/sections/:id/content/format", c.content.SwitchFormat)
		authGroup.GET("/sections/:id/versions", c.content.ListVersions)
		authGroup.GET("/sections/:id/versions/compare", c.content.CompareVersions)
		authGroup.GET("/sections/:id/versions/:number", c.content.GetVersion)
		authGroup.POST("/sections/:id/versions/:number/restore", c.content.RestoreVersion)
	}

	// 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/courses/recompute-stats", c.course.RecomputeStats)
	}
}
