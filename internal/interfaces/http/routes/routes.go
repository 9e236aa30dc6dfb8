package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/easayliu/smart-rename/internal/application/container"
	"github.com/easayliu/smart-rename/internal/interfaces/http/handlers"
	"github.com/easayliu/smart-rename/internal/interfaces/http/middleware"
)

// SetupRoutes 使用ServiceContainer创建路由
func SetupRoutes(c *container.ServiceContainer) *gin.Engine {
	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoverMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ContainerMiddleware(c))
	router.Use(middleware.ErrorHandlerMiddleware())

	// Swagger文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	namingHandler := handlers.NewNamingHandler(c)
	scanHandler := handlers.NewScanHandler(c)

	api := router.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		namingGroup := api.Group("/naming")
		{
			namingGroup.POST("/file", namingHandler.ProcessFile)
			namingGroup.POST("/batch", namingHandler.ProcessBatch)
			namingGroup.POST("/stats", namingHandler.Stats)
			namingGroup.GET("/metrics", namingHandler.Metrics)
			namingGroup.POST("/cancel", namingHandler.Cancel)
		}

		scans := api.Group("/scans")
		{
			scans.GET("", scanHandler.ListScans)
			scans.POST("", scanHandler.CreateScan)
			scans.GET("/tasks", scanHandler.ListTasks)
			scans.GET("/:id", scanHandler.GetScan)
		}
	}

	return router
}
