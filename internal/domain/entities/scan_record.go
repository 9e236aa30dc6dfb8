package entities

import (
	"time"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

// ScanStatus 扫描状态
type ScanStatus string

const (
	ScanStatusRunning ScanStatus = "running" // 运行中
	ScanStatusSuccess ScanStatus = "success" // 全部文件得到建议名
	ScanStatusPartial ScanStatus = "partial" // 部分文件失败
	ScanStatusError   ScanStatus = "error"   // 扫描本身失败
)

// ScanSummary 扫描结果汇总
type ScanSummary struct {
	Total          int                  `json:"total"`
	Succeeded      int                  `json:"succeeded"`
	Failed         int                  `json:"failed"`
	ByStage        map[naming.Stage]int `json:"by_stage"`
	TotalTokens    int                  `json:"total_tokens"`
	TotalCost      float64              `json:"total_cost"`
	MeanConfidence float64              `json:"mean_confidence"`
}

// ScanRecord 一次目录扫描的记录
type ScanRecord struct {
	ID         string           `json:"id"`                    // 记录ID
	Task       string           `json:"task"`                  // 定时任务名称，手动扫描为 "manual"
	Path       string           `json:"path"`                  // 扫描目录
	Recursive  bool             `json:"recursive"`             // 是否递归
	Status     ScanStatus       `json:"status"`                // 扫描状态
	Error      string           `json:"error,omitempty"`       // 扫描失败原因
	Results    []*naming.Result `json:"results,omitempty"`     // 每个文件的结果
	Summary    ScanSummary      `json:"summary"`               // 汇总
	StartedAt  time.Time        `json:"started_at"`            // 开始时间
	FinishedAt *time.Time       `json:"finished_at,omitempty"` // 结束时间
}

// Finish 记录结束时间并根据汇总设置状态
func (r *ScanRecord) Finish(at time.Time) {
	r.FinishedAt = &at
	switch {
	case r.Error != "":
		r.Status = ScanStatusError
	case r.Summary.Failed > 0:
		r.Status = ScanStatusPartial
	default:
		r.Status = ScanStatusSuccess
	}
}
