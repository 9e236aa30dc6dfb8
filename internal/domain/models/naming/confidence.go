package naming

import "math"

// ConfidenceScore 置信度评分，Value 恒在 [0,1] 区间
type ConfidenceScore struct {
	Value         float64 `json:"value"`
	Reasoning     string  `json:"reasoning"`
	SuggestedName string  `json:"suggested_name,omitempty"`
}

// NewConfidenceScore 构造评分并把数值钳制到 [0,1]
func NewConfidenceScore(value float64, reasoning, suggestedName string) ConfidenceScore {
	return ConfidenceScore{
		Value:         ClampConfidence(value),
		Reasoning:     reasoning,
		SuggestedName: suggestedName,
	}
}

// ClampConfidence 钳制置信度，NaN 视为 0
func ClampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Meets 是否达到阈值
func (c ConfidenceScore) Meets(threshold float64) bool {
	return c.Value >= threshold
}
