package openai

import (
	"context"
	"encoding/base64"
)

// ChatClient Chat专用客户端
// 提供更简洁的Chat Completion API封装
type ChatClient struct {
	client *Client // 底层OpenAI客户端
}

// NewChatClient 创建Chat客户端
func NewChatClient(client *Client) *ChatClient {
	if client == nil {
		panic("client不能为nil")
	}
	return &ChatClient{
		client: client,
	}
}

// Complete 执行Chat请求，默认参数取自客户端配置
func (c *ChatClient) Complete(ctx context.Context, messages []ChatMessage, opts ...ChatOption) (*ChatResponse, error) {
	req := &ChatRequest{
		Model:       c.client.config.Model,
		Messages:    messages,
		Temperature: c.client.config.Temperature,
		MaxTokens:   c.client.config.MaxTokens,
	}

	for _, opt := range opts {
		opt(req)
	}

	return c.client.ChatCompletion(ctx, req)
}

// ChatOption 配置选项函数
type ChatOption func(*ChatRequest)

// WithTemperature 设置温度参数
// temperature: 0.0-2.0，越高越随机
func WithTemperature(temperature float32) ChatOption {
	return func(req *ChatRequest) {
		req.Temperature = temperature
	}
}

// WithMaxTokens 设置最大token数
func WithMaxTokens(maxTokens int) ChatOption {
	return func(req *ChatRequest) {
		if maxTokens > 0 {
			req.MaxTokens = maxTokens
		}
	}
}

// WithModel 设置使用的模型
func WithModel(model string) ChatOption {
	return func(req *ChatRequest) {
		if model != "" {
			req.Model = model
		}
	}
}

// WithJSONMode 要求模型返回JSON对象
func WithJSONMode() ChatOption {
	return func(req *ChatRequest) {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
}

// TextMessage 纯文本消息
func TextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: text}
}

// ImageMessage 文本 + 图片的多模态消息，图片以 data URL 内联
func ImageMessage(role, text string, images []InlineImage) ChatMessage {
	parts := make([]ContentPart, 0, len(images)+1)
	parts = append(parts, ContentPart{Type: "text", Text: text})
	for _, img := range images {
		parts = append(parts, ContentPart{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL:    "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
				Detail: "low",
			},
		})
	}
	return ChatMessage{Role: role, Content: parts}
}

// InlineImage 内联图片数据
type InlineImage struct {
	MIMEType string
	Data     []byte
}
