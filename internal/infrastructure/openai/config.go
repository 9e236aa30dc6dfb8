package openai

import (
	"time"

	"github.com/easayliu/smart-rename/internal/infrastructure/config"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// Config OpenAI客户端配置
type Config struct {
	APIKey      string        // API密钥
	BaseURL     string        // API基础URL，兼容OpenAI协议的服务也可使用
	Model       string        // 默认模型
	Temperature float32       // 默认温度参数
	MaxTokens   int           // 默认最大Token数
	Timeout     time.Duration // HTTP超时时间
	QPS         int           // 每秒请求数限制
}

// NewConfigFromAppConfig 从应用配置创建OpenAI客户端配置
// OPENAI_API_KEY 环境变量已在加载配置时合并
func NewConfigFromAppConfig(cfg *config.OpenAIConfig, model string) *Config {
	return &Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		QPS:         cfg.QPS,
	}
}

// Validate 验证配置并补齐默认值
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	return nil
}
