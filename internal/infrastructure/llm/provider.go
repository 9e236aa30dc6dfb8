package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled LLM功能未启用
var ErrDisabled = errors.New("llm is disabled")

// Service 文本生成服务
// 流水线只依赖该接口，不依赖具体厂商
type Service interface {
	// Generate 执行一次生成调用
	Generate(ctx context.Context, req Request) (*Response, error)

	// Capabilities 静态能力描述，每个实例只需读取一次
	Capabilities() Capabilities
}

// Image 随请求发送的图片
type Image struct {
	MIMEType string
	Data     []byte
}

// Request 生成请求
// Temperature 和 MaxTokens 为0时使用服务端配置的默认值
type Request struct {
	Model       string
	System      string
	User        string
	Images      []Image
	Temperature float32
	MaxTokens   int
	JSON        bool // 要求返回JSON对象
}

// Usage token用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 生成结果
type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	Usage        Usage  `json:"usage"`
	FinishReason string `json:"finish_reason"`
}

// Capabilities 服务能力描述
type Capabilities struct {
	Provider      string `json:"provider"`
	Vision        bool   `json:"vision"`          // 是否支持图片输入
	JSONMode      bool   `json:"json_mode"`       // 是否支持强制JSON输出
	MaxImageBytes int    `json:"max_image_bytes"` // 单张图片上限，0表示不限制
}

// ProviderError 服务商返回的错误
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
