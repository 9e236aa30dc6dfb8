package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/easayliu/smart-rename/internal/application/container"
	"github.com/easayliu/smart-rename/internal/domain/entities"
	apperrors "github.com/easayliu/smart-rename/internal/shared/errors"
	"github.com/easayliu/smart-rename/pkg/utils"
)

const defaultScanListLimit = 20

// ScanRequest 目录扫描请求
type ScanRequest struct {
	Path      string `json:"path" binding:"required" example:"/data/photos"`
	Recursive bool   `json:"recursive"`
	Wait      bool   `json:"wait"` // true时同步等待扫描完成
}

// ScanHandler 扫描记录接口
type ScanHandler struct {
	container *container.ServiceContainer
}

// NewScanHandler 创建扫描处理器
func NewScanHandler(c *container.ServiceContainer) *ScanHandler {
	return &ScanHandler{container: c}
}

// CreateScan 扫描目录
// @Summary 扫描目录并生成命名建议
// @Description wait=false 时立即返回running状态的记录，后台完成后可通过ID查询
// @Tags 扫描
// @Accept json
// @Produce json
// @Param request body ScanRequest true "扫描参数"
// @Success 200 {object} utils.Response{data=entities.ScanRecord}
// @Success 202 {object} utils.Response{data=entities.ScanRecord}
// @Failure 400 {object} map[string]interface{}
// @Router /scans [post]
func (h *ScanHandler) CreateScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "Invalid request parameters: "+err.Error()))
		return
	}

	sched, err := h.container.GetScheduler()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "scheduler unavailable", err))
		return
	}

	if !req.Wait {
		record, err := sched.StartScan(req.Path, req.Recursive)
		if err != nil {
			_ = c.Error(err)
			return
		}
		utils.Accepted(c, record)
		return
	}

	record, err := sched.RunNow(c.Request.Context(), req.Path, req.Recursive)
	if err != nil && (record == nil || record.Status != entities.ScanStatusError) {
		_ = c.Error(err)
		return
	}
	if record.Status == entities.ScanStatusError {
		_ = c.Error(apperrors.NewServiceErrorWithDetails(apperrors.ErrorCodeInvalidRequest, record.Error,
			map[string]interface{}{"id": record.ID}))
		return
	}
	utils.Success(c, record)
}

// ListScans 扫描记录列表
// @Summary 最近的扫描记录
// @Tags 扫描
// @Produce json
// @Param limit query int false "返回数量" default(20)
// @Success 200 {object} utils.Response{data=[]entities.ScanRecord}
// @Router /scans [get]
func (h *ScanHandler) ListScans(c *gin.Context) {
	limit := defaultScanListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			_ = c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	sched, err := h.container.GetScheduler()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "scheduler unavailable", err))
		return
	}
	records, err := sched.ListScans(limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.Success(c, records)
}

// GetScan 扫描记录详情
// @Summary 获取扫描记录
// @Tags 扫描
// @Produce json
// @Param id path string true "记录ID"
// @Success 200 {object} utils.Response{data=entities.ScanRecord}
// @Failure 404 {object} map[string]interface{}
// @Router /scans/{id} [get]
func (h *ScanHandler) GetScan(c *gin.Context) {
	sched, err := h.container.GetScheduler()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "scheduler unavailable", err))
		return
	}
	record, err := sched.GetScan(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.Success(c, record)
}

// ListTasks 定时任务
// @Summary 已调度的定时扫描任务
// @Tags 扫描
// @Produce json
// @Success 200 {object} utils.Response{data=[]scheduler.TaskStatus}
// @Router /scans/tasks [get]
func (h *ScanHandler) ListTasks(c *gin.Context) {
	sched, err := h.container.GetScheduler()
	if err != nil {
		_ = c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeServiceUnavailable, "scheduler unavailable", err))
		return
	}
	utils.Success(c, sched.Tasks())
}
