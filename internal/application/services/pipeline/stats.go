package pipeline

import (
	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

// CostOf 按价格表（每1K token美元）计算用量费用，未登记的模型按0计
func CostOf(usage []naming.StageUsage, pricing map[string]float64) float64 {
	cost := 0.0
	for _, u := range usage {
		cost += float64(u.TotalTokens) * pricing[u.Model] / 1000
	}
	return cost
}

// ComputeStats 汇总一批结果，不修改输入
// 失败结果计入 Failed，但已消耗的token和费用仍然统计
func ComputeStats(results []*naming.Result, pricing map[string]float64) contracts.NamingStats {
	stats := contracts.NamingStats{ByStage: make(map[naming.Stage]int)}

	confidenceSum := 0.0
	for _, r := range results {
		if r == nil {
			continue
		}
		stats.Total++
		stats.TotalTokens += r.TokensUsed
		stats.TotalCost += CostOf(r.Usage, pricing)

		if !r.Succeeded() {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		if r.Stage != "" {
			stats.ByStage[r.Stage]++
		}
		confidenceSum += r.Confidence
	}

	if stats.Succeeded > 0 {
		stats.MeanConfidence = confidenceSum / float64(stats.Succeeded)
	}
	return stats
}
