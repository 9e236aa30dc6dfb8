package pipeline

import (
	"fmt"
	"strings"

	"github.com/easayliu/smart-rename/internal/infrastructure/config"
)

// Strategy 阈值与阶段开关
type Strategy struct {
	Name              string  `json:"name"`
	MetadataEnabled   bool    `json:"metadata_enabled"`
	MetadataThreshold float64 `json:"metadata_threshold"`
	CheapEnabled      bool    `json:"cheap_enabled"`
	CheapThreshold    float64 `json:"cheap_threshold"`
}

const (
	StrategyAggressive = "aggressive"
	StrategyBalanced   = "balanced"
	StrategyQuality    = "quality"
)

var presets = map[string]Strategy{
	StrategyAggressive: {Name: StrategyAggressive, MetadataEnabled: true, MetadataThreshold: 0.7, CheapEnabled: true, CheapThreshold: 0.6},
	StrategyBalanced:   {Name: StrategyBalanced, MetadataEnabled: true, MetadataThreshold: 0.8, CheapEnabled: true, CheapThreshold: 0.75},
	StrategyQuality:    {Name: StrategyQuality},
}

// ParseStrategy 按名称取预设，大小写不敏感，空字符串为 balanced
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = StrategyBalanced
	}
	s, ok := presets[key]
	if !ok {
		return Strategy{}, fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// StrategyFromConfig 预设 + 配置中非零阈值覆盖
// quality 预设关闭的阶段不会因为覆盖阈值而重新打开
func StrategyFromConfig(cfg config.PipelineConfig) (Strategy, error) {
	s, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return Strategy{}, err
	}
	if s.MetadataEnabled && cfg.MetadataThreshold > 0 {
		s.MetadataThreshold = cfg.MetadataThreshold
	}
	if s.CheapEnabled && cfg.CheapThreshold > 0 {
		s.CheapThreshold = cfg.CheapThreshold
	}
	return s, nil
}
