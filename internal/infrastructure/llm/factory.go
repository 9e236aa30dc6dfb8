package llm

import (
	"fmt"

	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/infrastructure/openai"
	"github.com/easayliu/smart-rename/internal/infrastructure/ratelimit"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// Factory LLM工厂
// 根据配置创建 Service，由调用方注入流水线，不保存全局实例
// 同一工厂创建的 Provider 共用一个速率限制器（同一账号的 cheap/premium 模型共享配额）
type Factory struct {
	config  *config.LLMConfig
	opts    []openai.ClientOption
	limiter *ratelimit.RateLimiter
}

// NewFactory 创建LLM工厂
func NewFactory(cfg *config.LLMConfig, opts ...openai.ClientOption) *Factory {
	if cfg == nil {
		panic("LLM配置不能为nil")
	}
	return &Factory{
		config:  cfg,
		opts:    opts,
		limiter: ratelimit.NewRateLimiter(cfg.OpenAI.QPS),
	}
}

// RateLimiter 工厂内共享的速率限制器
func (f *Factory) RateLimiter() *ratelimit.RateLimiter {
	return f.limiter
}

// CreateService 按配置创建服务，未启用时返回 DisabledService
func (f *Factory) CreateService() (Service, error) {
	if !f.config.Enabled {
		logger.Warn("LLM disabled, only metadata naming is available")
		return NewDisabledService(), nil
	}
	return f.CreateProvider(f.GetProviderName())
}

// CreateProvider 创建指定的Provider
//
// 支持的Provider:
//   - openai: OpenAI 以及兼容 Chat Completions 协议的服务
//   - anthropic: [预留]
//   - ollama: [预留]
func (f *Factory) CreateProvider(providerName string) (Service, error) {
	switch providerName {
	case providerOpenAI:
		if f.config.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai api key未配置，请设置 llm.openai.api_key 或 OPENAI_API_KEY")
		}
		opts := append([]openai.ClientOption{openai.WithRateLimiter(f.limiter)}, f.opts...)
		provider, err := NewOpenAIProvider(&f.config.OpenAI, f.config.Models.Premium, opts...)
		if err != nil {
			return nil, fmt.Errorf("创建OpenAI Provider失败: %w", err)
		}
		return provider, nil

	case "anthropic", "ollama":
		return nil, fmt.Errorf("%s provider尚未实现", providerName)

	default:
		return nil, fmt.Errorf("未知的provider: %s，支持的provider: openai", providerName)
	}
}

// IsEnabled 检查LLM功能是否启用
func (f *Factory) IsEnabled() bool {
	return f.config.Enabled
}

// GetProviderName 获取当前配置的Provider名称
func (f *Factory) GetProviderName() string {
	if f.config.Provider == "" {
		return providerOpenAI
	}
	return f.config.Provider
}
