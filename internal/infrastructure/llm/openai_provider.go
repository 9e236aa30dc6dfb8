package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/infrastructure/openai"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const (
	providerOpenAI = "openai"

	// openAIMaxImageBytes 内联data URL图片的上限
	openAIMaxImageBytes = 20 << 20
)

// OpenAIProvider 基于OpenAI Chat Completions协议的实现
type OpenAIProvider struct {
	client     *openai.Client
	chatClient *openai.ChatClient
}

// NewOpenAIProvider 创建OpenAI Provider，model 为请求未指定模型时的默认值
func NewOpenAIProvider(cfg *config.OpenAIConfig, model string, opts ...openai.ClientOption) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("openai config cannot be nil")
	}

	clientConfig := openai.NewConfigFromAppConfig(cfg, model)
	if err := clientConfig.Validate(); err != nil {
		return nil, fmt.Errorf("openai config validation failed: %w", err)
	}

	client, err := openai.NewClient(clientConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return &OpenAIProvider{
		client:     client,
		chatClient: openai.NewChatClient(client),
	}, nil
}

// Capabilities OpenAI兼容接口支持图片和JSON模式
func (p *OpenAIProvider) Capabilities() Capabilities {
	return Capabilities{
		Provider:      providerOpenAI,
		Vision:        true,
		JSONMode:      true,
		MaxImageBytes: openAIMaxImageBytes,
	}
}

// Generate 执行一次Chat Completion
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := p.buildMessages(req)

	chatOpts := []openai.ChatOption{
		openai.WithModel(req.Model),
		openai.WithMaxTokens(req.MaxTokens),
	}
	if req.Temperature > 0 {
		chatOpts = append(chatOpts, openai.WithTemperature(req.Temperature))
	}
	if req.JSON {
		chatOpts = append(chatOpts, openai.WithJSONMode())
	}

	// context没有deadline时使用配置中的timeout
	apiCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		apiCtx, cancel = context.WithTimeout(ctx, p.client.Config().Timeout)
		defer cancel()
	}

	resp, err := p.chatClient.Complete(apiCtx, messages, chatOpts...)
	if err != nil {
		return nil, p.wrapError(err)
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" && choice.Message.Refusal != "" {
		return nil, &ProviderError{Provider: providerOpenAI, Message: "refused: " + choice.Message.Refusal}
	}

	logger.Debug("OpenAI generation finished",
		"model", resp.Model,
		"finish_reason", choice.FinishReason,
		"tokens_used", resp.Usage.TotalTokens,
	)

	return &Response{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (p *OpenAIProvider) buildMessages(req Request) []openai.ChatMessage {
	messages := make([]openai.ChatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.TextMessage("system", req.System))
	}

	if len(req.Images) == 0 {
		return append(messages, openai.TextMessage("user", req.User))
	}

	images := make([]openai.InlineImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, openai.InlineImage{MIMEType: img.MIMEType, Data: img.Data})
	}
	return append(messages, openai.ImageMessage("user", req.User, images))
}

// wrapError 把HTTP状态错误转换为 ProviderError，网络错误保持原样包装
func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   providerOpenAI,
			StatusCode: apiErr.StatusCode,
			Code:       apiErr.Code,
			Message:    logger.SanitizeString(apiErr.Message),
			RetryAfter: apiErr.RetryAfter,
			Err:        err,
		}
	}
	if errors.Is(err, openai.ErrEmptyResponse) {
		return &ProviderError{Provider: providerOpenAI, Message: err.Error(), Err: err}
	}
	return fmt.Errorf("openai generate: %w", err)
}
