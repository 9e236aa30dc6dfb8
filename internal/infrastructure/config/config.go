package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sampler   SamplerConfig   `mapstructure:"sampler"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	DataDir   string          `mapstructure:"data_dir"` // 扫描记录等本地数据目录
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"` // console, file, both
	Format    string `mapstructure:"format"` // text, json
	FilePath  string `mapstructure:"file_path"`
	Colorize  bool   `mapstructure:"colorize"`
	AddSource bool   `mapstructure:"add_source"`
}

type LLMConfig struct {
	Enabled  bool               `mapstructure:"enabled"`
	Provider string             `mapstructure:"provider"`
	OpenAI   OpenAIConfig       `mapstructure:"openai"`
	Models   ModelsConfig       `mapstructure:"models"`
	Pricing  map[string]float64 `mapstructure:"pricing"` // 模型 -> 每1K token美元价格
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     int     `mapstructure:"timeout"` // 秒
	QPS         int     `mapstructure:"qps"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type ModelsConfig struct {
	Cheap   string `mapstructure:"cheap"`
	Premium string `mapstructure:"premium"`
}

// PipelineConfig 阈值为0表示沿用策略预设
type PipelineConfig struct {
	Strategy              string  `mapstructure:"strategy"` // aggressive, balanced, quality
	MetadataThreshold     float64 `mapstructure:"metadata_threshold"`
	CheapThreshold        float64 `mapstructure:"cheap_threshold"`
	Concurrency           int     `mapstructure:"concurrency"`
	FailFast              bool    `mapstructure:"fail_fast"`
	SiblingDiscount       float64 `mapstructure:"sibling_discount"`
	PatternTrustThreshold float64 `mapstructure:"pattern_trust_threshold"`
}

type RetryConfig struct {
	MaxRetries      int `mapstructure:"max_retries"`
	BaseDelayMs     int `mapstructure:"base_delay_ms"`
	MaxDelayMs      int `mapstructure:"max_delay_ms"`
	RequestTimeoutS int `mapstructure:"request_timeout_s"` // 单次调用超时
}

type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Capacity   int  `mapstructure:"capacity"`
	TTLMinutes int  `mapstructure:"ttl_minutes"`
}

type SamplerConfig struct {
	MaxTextBytes  int `mapstructure:"max_text_bytes"`
	MaxImageBytes int `mapstructure:"max_image_bytes"`
}

type SchedulerConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Tasks   []ScheduledTask `mapstructure:"tasks"`
}

type ScheduledTask struct {
	Name      string `mapstructure:"name"`      // 任务名称
	Enabled   bool   `mapstructure:"enabled"`   // 是否启用
	Cron      string `mapstructure:"cron"`      // cron表达式，如 "0 2 * * *" 每天凌晨2点
	Path      string `mapstructure:"path"`      // 要扫描的目录
	Recursive bool   `mapstructure:"recursive"` // 是否递归子目录
}

type TelegramConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BotToken string  `mapstructure:"bot_token"`
	ChatIDs  []int64 `mapstructure:"chat_ids"`
}

var validStrategies = map[string]struct{}{
	"aggressive": {},
	"balanced":   {},
	"quality":    {},
}

// LoadConfig 从 ./configs 或当前目录读取 config.yaml
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom 读取指定配置文件，path为空时按默认路径查找
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SMART_RENAME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		config.LLM.OpenAI.APIKey = envKey
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_path", "./logs/smart-rename.log")
	v.SetDefault("log.colorize", true)
	v.SetDefault("log.add_source", false)

	// LLM
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.timeout", 30)
	v.SetDefault("llm.openai.qps", 5)
	v.SetDefault("llm.openai.temperature", 0.2)
	v.SetDefault("llm.openai.max_tokens", 120)
	v.SetDefault("llm.models.cheap", "gpt-4o-mini")
	v.SetDefault("llm.models.premium", "gpt-4o")
	v.SetDefault("llm.pricing", map[string]float64{
		"gpt-4o-mini": 0.00015,
		"gpt-4o":      0.0025,
	})

	// 流水线
	v.SetDefault("pipeline.strategy", "balanced")
	v.SetDefault("pipeline.metadata_threshold", 0)
	v.SetDefault("pipeline.cheap_threshold", 0)
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.fail_fast", false)
	v.SetDefault("pipeline.sibling_discount", 0.95)
	v.SetDefault("pipeline.pattern_trust_threshold", 0.7)

	// 重试
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay_ms", 1000)
	v.SetDefault("retry.max_delay_ms", 10000)
	v.SetDefault("retry.request_timeout_s", 30)

	// 缓存
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.ttl_minutes", 60)

	// 采样
	v.SetDefault("sampler.max_text_bytes", 4096)
	v.SetDefault("sampler.max_image_bytes", 512*1024)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.tasks", []ScheduledTask{})

	v.SetDefault("telegram.enabled", false)

	v.SetDefault("data_dir", "./data")
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	if _, ok := validStrategies[strings.ToLower(c.Pipeline.Strategy)]; !ok {
		return fmt.Errorf("unknown pipeline strategy %q (want aggressive, balanced or quality)", c.Pipeline.Strategy)
	}

	thresholds := map[string]float64{
		"pipeline.metadata_threshold":      c.Pipeline.MetadataThreshold,
		"pipeline.cheap_threshold":         c.Pipeline.CheapThreshold,
		"pipeline.pattern_trust_threshold": c.Pipeline.PatternTrustThreshold,
	}
	for key, value := range thresholds {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", key, value)
		}
	}
	if c.Pipeline.SiblingDiscount <= 0 || c.Pipeline.SiblingDiscount > 1 {
		return fmt.Errorf("pipeline.sibling_discount must be within (0,1], got %v", c.Pipeline.SiblingDiscount)
	}
	if c.Pipeline.Concurrency < 1 {
		return fmt.Errorf("pipeline.concurrency must be >= 1, got %d", c.Pipeline.Concurrency)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.BaseDelayMs < 0 || c.Retry.MaxDelayMs < c.Retry.BaseDelayMs {
		return fmt.Errorf("retry delays invalid: base=%dms max=%dms", c.Retry.BaseDelayMs, c.Retry.MaxDelayMs)
	}
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be >= 1 when cache is enabled")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	return nil
}
