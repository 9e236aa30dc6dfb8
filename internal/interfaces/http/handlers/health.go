package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easayliu/smart-rename/internal/interfaces/http/middleware"
)

// HealthCheck 健康检查
// @Summary 健康检查
// @Description 检查服务及各组件的健康状态
// @Tags 健康检查
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	health := middleware.GetContainer(c).GetServiceHealth()

	status := http.StatusOK
	if health["container"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	health["status"] = "ok"
	if status != http.StatusOK {
		health["status"] = "degraded"
	}
	c.JSON(status, health)
}
