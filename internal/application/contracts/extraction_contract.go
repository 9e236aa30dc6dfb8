package contracts

import (
	"context"
	"errors"
)

// ErrUnsupportedFormat 提取器无法处理该格式
var ErrUnsupportedFormat = errors.New("unsupported content format")

// Extraction 内容提取结果
// Text 与 Image 至多一个非空
type Extraction struct {
	Text     string `json:"text,omitempty"`
	Image    []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Method   string `json:"method"` // 提取方式，如 "text-head"、"image-raw"
}

// ContentExtractor 格式相关的内容提取
// 实现方负责具体格式（文本、图片等）的解析，失败时返回错误，由采样器降级处理
type ContentExtractor interface {
	// Extract 提取文件内容，formatHint 为小写扩展名（带点号），可为空
	Extract(ctx context.Context, path string, formatHint string) (Extraction, error)
}
