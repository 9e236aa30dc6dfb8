package contracts

import (
	"context"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

// NamingStats 一批结果的汇总统计
type NamingStats struct {
	Total          int                  `json:"total"`
	Succeeded      int                  `json:"succeeded"`
	Failed         int                  `json:"failed"`
	ByStage        map[naming.Stage]int `json:"by_stage"`
	TotalTokens    int                  `json:"total_tokens"`
	TotalCost      float64              `json:"total_cost"`
	MeanConfidence float64              `json:"mean_confidence"`
}

// NamingService 命名流水线对外契约，HTTP、调度和CLI都只依赖该接口
type NamingService interface {
	// ProcessFile 单个文件走完整流水线
	ProcessFile(ctx context.Context, desc naming.FileDescriptor) *naming.Result

	// ProcessBatch 批量处理，结果与输入一一对应且保持输入顺序
	ProcessBatch(ctx context.Context, files []naming.FileDescriptor) []*naming.Result

	// GetStats 纯函数汇总
	GetStats(results []*naming.Result) NamingStats

	// Cancel 取消指定文件路径的进行中处理
	Cancel(path string) bool

	// CancelAll 取消所有进行中处理
	CancelAll() int
}
