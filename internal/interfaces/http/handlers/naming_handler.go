package handlers

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"

	"github.com/easayliu/smart-rename/internal/application/container"
	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/cache"
	"github.com/easayliu/smart-rename/internal/application/services/invoker"
	"github.com/easayliu/smart-rename/internal/application/services/pipeline"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/infrastructure/filesystem"
	apperrors "github.com/easayliu/smart-rename/internal/shared/errors"
	"github.com/easayliu/smart-rename/pkg/utils"
)

// MaxBatchPaths 单次批量请求的路径上限
const MaxBatchPaths = 1000

// FileRequest 单文件命名请求
type FileRequest struct {
	Path string `json:"path" binding:"required" example:"/data/photos/IMG_0001.jpg"`
}

// BatchRequest 批量命名请求
type BatchRequest struct {
	Paths []string `json:"paths" binding:"required,min=1"`
}

// BatchResponse 批量命名响应，results 与请求 paths 一一对应
type BatchResponse struct {
	Results []*naming.Result      `json:"results"`
	Stats   contracts.NamingStats `json:"stats"`
}

// StatsRequest 对已有结果做汇总
type StatsRequest struct {
	Results []*naming.Result `json:"results" binding:"required"`
}

// CancelRequest path为空时取消全部
type CancelRequest struct {
	Path string `json:"path"`
}

// CancelResponse 取消结果
type CancelResponse struct {
	Canceled int `json:"canceled"`
}

// MetricsResponse 调用和缓存统计
type MetricsResponse struct {
	Provider      string                  `json:"provider"`
	Strategy      string                  `json:"strategy"`
	Invoker       invoker.MetricsSnapshot `json:"invoker"`
	Cache         cache.Stats             `json:"cache"`
	ActiveFiles   int                     `json:"active_files"`
	EventsDropped uint64                  `json:"events_dropped"`
}

// NamingHandler 命名接口 - 纯协议转换层
type NamingHandler struct {
	container *container.ServiceContainer
	validator *filesystem.PathValidator
}

// NewNamingHandler 创建命名处理器
func NewNamingHandler(c *container.ServiceContainer) *NamingHandler {
	return &NamingHandler{container: c, validator: filesystem.NewPathValidator()}
}

// validatingSource 读取描述前先校验路径
type validatingSource struct {
	validator *filesystem.PathValidator
	reader    *filesystem.DescriptorReader
}

func (s validatingSource) Read(path string) (naming.FileDescriptor, error) {
	if err := s.validator.Validate(path); err != nil {
		return naming.FileDescriptor{}, err
	}
	return s.reader.Read(path)
}

// ProcessFile 单文件命名
// @Summary 单文件命名建议
// @Description 读取文件元数据并依次尝试元数据、低价模型、高价模型阶段
// @Tags 命名
// @Accept json
// @Produce json
// @Param request body FileRequest true "文件路径"
// @Success 200 {object} utils.Response{data=naming.Result}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /naming/file [post]
func (h *NamingHandler) ProcessFile(c *gin.Context) {
	var req FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "Invalid request parameters: "+err.Error()))
		return
	}

	svc, err := h.container.GetNamingService()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}

	src := validatingSource{validator: h.validator, reader: h.container.GetDescriptorReader()}
	desc, err := src.Read(req.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeNotFound, fmt.Sprintf("file not found: %s", req.Path), err))
			return
		}
		_ = c.Error(err)
		return
	}

	result := svc.ProcessFile(pipeline.WithSource(c.Request.Context(), "api"), desc)
	utils.Success(c, result)
}

// ProcessBatch 批量命名
// @Summary 批量命名建议
// @Description 相似文件分组，代表文件结果可信时同组文件按模板命名
// @Tags 命名
// @Accept json
// @Produce json
// @Param request body BatchRequest true "文件路径列表"
// @Success 200 {object} utils.Response{data=BatchResponse}
// @Failure 400 {object} map[string]interface{}
// @Router /naming/batch [post]
func (h *NamingHandler) ProcessBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "Invalid request parameters: "+err.Error()))
		return
	}
	if len(req.Paths) > MaxBatchPaths {
		_ = c.Error(apperrors.NewServiceErrorWithDetails(apperrors.ErrorCodeInvalidRequest,
			"too many paths", map[string]interface{}{"max": MaxBatchPaths, "got": len(req.Paths)}))
		return
	}

	svc, err := h.container.GetNamingService()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}

	src := validatingSource{validator: h.validator, reader: h.container.GetDescriptorReader()}
	results := pipeline.ProcessPaths(pipeline.WithSource(c.Request.Context(), "api"), svc, src, req.Paths)
	utils.Success(c, BatchResponse{Results: results, Stats: svc.GetStats(results)})
}

// Stats 汇总结果
// @Summary 结果统计
// @Description 汇总成功数、各阶段数量、token与费用，不调用任何服务商
// @Tags 命名
// @Accept json
// @Produce json
// @Param request body StatsRequest true "命名结果"
// @Success 200 {object} utils.Response{data=contracts.NamingStats}
// @Router /naming/stats [post]
func (h *NamingHandler) Stats(c *gin.Context) {
	var req StatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "Invalid request parameters: "+err.Error()))
		return
	}
	svc, err := h.container.GetNamingService()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}
	utils.Success(c, svc.GetStats(req.Results))
}

// Metrics 调用统计
// @Summary 调用与缓存统计
// @Tags 命名
// @Produce json
// @Success 200 {object} utils.Response{data=MetricsResponse}
// @Router /naming/metrics [get]
func (h *NamingHandler) Metrics(c *gin.Context) {
	p, err := h.container.GetPipeline()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}
	inv, err := h.container.GetInvoker()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}

	utils.Success(c, MetricsResponse{
		Provider:      inv.Capabilities().Provider,
		Strategy:      p.Strategy().Name,
		Invoker:       inv.Metrics(),
		Cache:         p.CacheStats(),
		ActiveFiles:   p.Active(),
		EventsDropped: h.container.GetEventBus().Dropped(),
	})
}

// Cancel 取消处理
// @Summary 取消进行中的处理
// @Description path为空时取消所有进行中的文件
// @Tags 命名
// @Accept json
// @Produce json
// @Param request body CancelRequest false "文件路径"
// @Success 200 {object} utils.Response{data=CancelResponse}
// @Router /naming/cancel [post]
func (h *NamingHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "Invalid request parameters: "+err.Error()))
			return
		}
	}

	svc, err := h.container.GetNamingService()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "naming service unavailable", err))
		return
	}

	if req.Path == "" {
		utils.Success(c, CancelResponse{Canceled: svc.CancelAll()})
		return
	}
	canceled := 0
	if svc.Cancel(req.Path) {
		canceled = 1
	}
	utils.Success(c, CancelResponse{Canceled: canceled})
}
