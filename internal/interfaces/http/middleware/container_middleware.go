package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/easayliu/smart-rename/internal/application/container"
)

const containerKey = "container"

// ContainerMiddleware 服务容器中间件
// 将ServiceContainer注入到gin.Context中,供handlers使用
func ContainerMiddleware(c *container.ServiceContainer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(containerKey, c)
		ctx.Next()
	}
}

// GetContainer 从gin.Context中获取ServiceContainer
func GetContainer(ctx *gin.Context) *container.ServiceContainer {
	v, exists := ctx.Get(containerKey)
	if !exists {
		panic("ServiceContainer not found in context. Did you forget to use ContainerMiddleware?")
	}
	return v.(*container.ServiceContainer)
}
