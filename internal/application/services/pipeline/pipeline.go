package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/cache"
	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/internal/application/services/prompt"
	"github.com/easayliu/smart-rename/internal/application/services/sampler"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/domain/services/grouping"
	"github.com/easayliu/smart-rename/internal/domain/services/metadata"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const (
	DefaultConcurrency     = 5
	DefaultSiblingDiscount = 0.95
)

// ErrCanceled 文件在开始处理前已被取消
var ErrCanceled = errors.New("processing canceled")

// Generator 带重试的生成调用，invoker.Invoker 实现该接口
type Generator interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.Response, error)
	Capabilities() llm.Capabilities
}

// Config 流水线配置
type Config struct {
	Strategy              Strategy
	CheapModel            string
	PremiumModel          string
	Concurrency           int
	FailFast              bool
	SiblingDiscount       float64
	PatternTrustThreshold float64
	Pricing               map[string]float64 // 模型 -> 每1K token美元
	Temperature           float32
	MaxTokens             int
}

// ConfigFromApp 从应用配置构造流水线配置
func ConfigFromApp(cfg *config.Config) (Config, error) {
	strategy, err := StrategyFromConfig(cfg.Pipeline)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Strategy:              strategy,
		CheapModel:            cfg.LLM.Models.Cheap,
		PremiumModel:          cfg.LLM.Models.Premium,
		Concurrency:           cfg.Pipeline.Concurrency,
		FailFast:              cfg.Pipeline.FailFast,
		SiblingDiscount:       cfg.Pipeline.SiblingDiscount,
		PatternTrustThreshold: cfg.Pipeline.PatternTrustThreshold,
		Pricing:               cfg.LLM.Pricing,
		Temperature:           cfg.LLM.OpenAI.Temperature,
		MaxTokens:             cfg.LLM.OpenAI.MaxTokens,
	}, nil
}

// Option 流水线选项
type Option func(*Pipeline)

// WithSampler 内容采样器，未设置时只使用元数据样本
func WithSampler(s *sampler.Sampler) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sampler = s
		}
	}
}

// WithCache 结果缓存
func WithCache(c *cache.ResultCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithEventBus 发布批处理完成事件
func WithEventBus(bus *events.Bus) Option {
	return func(p *Pipeline) {
		p.bus = bus
	}
}

// WithGrouper 替换分组器（测试中注入时钟和ID）
func WithGrouper(g *grouping.Grouper) Option {
	return func(p *Pipeline) {
		if g != nil {
			p.grouper = g
		}
	}
}

// WithPromptBuilder 替换提示词构建器
func WithPromptBuilder(b *prompt.Builder) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.builder = b
		}
	}
}

// Pipeline 成本感知的命名流水线
// 每个实例持有自己的生成服务、缓存和统计，多个实例互不影响
type Pipeline struct {
	gen      Generator
	caps     llm.Capabilities
	cfg      Config
	scorer   *metadata.Scorer
	sampler  *sampler.Sampler
	grouper  *grouping.Grouper
	builder  *prompt.Builder
	cache    *cache.ResultCache
	bus      *events.Bus
	tracker  *tracker
	cacheOpt map[string]string
}

var _ contracts.NamingService = (*Pipeline)(nil)

// New 创建流水线，生成服务的能力描述只读取一次
func New(gen Generator, cfg Config, opts ...Option) *Pipeline {
	if cfg.Strategy.Name == "" {
		cfg.Strategy, _ = ParseStrategy(StrategyBalanced)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.SiblingDiscount <= 0 || cfg.SiblingDiscount > 1 {
		cfg.SiblingDiscount = DefaultSiblingDiscount
	}
	if cfg.PatternTrustThreshold <= 0 {
		cfg.PatternTrustThreshold = grouping.DefaultTrustThreshold
	}

	p := &Pipeline{
		gen:     gen,
		caps:    gen.Capabilities(),
		cfg:     cfg,
		scorer:  metadata.NewScorer(),
		sampler: sampler.New(nil, sampler.Config{}),
		grouper: grouping.NewGrouper(),
		builder: prompt.NewBuilder(),
		tracker: newTracker(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.cacheOpt = map[string]string{
		"strategy":           cfg.Strategy.Name,
		"metadata_enabled":   strconv.FormatBool(cfg.Strategy.MetadataEnabled),
		"metadata_threshold": strconv.FormatFloat(cfg.Strategy.MetadataThreshold, 'f', -1, 64),
		"cheap_enabled":      strconv.FormatBool(cfg.Strategy.CheapEnabled),
		"cheap_threshold":    strconv.FormatFloat(cfg.Strategy.CheapThreshold, 'f', -1, 64),
		"cheap_model":        cfg.CheapModel,
		"premium_model":      cfg.PremiumModel,
		"provider":           p.caps.Provider,
		"temperature":        strconv.FormatFloat(float64(cfg.Temperature), 'f', -1, 32),
		"max_tokens":         strconv.Itoa(cfg.MaxTokens),
		"cheap_price":        strconv.FormatFloat(cfg.Pricing[cfg.CheapModel], 'f', -1, 64),
		"premium_price":      strconv.FormatFloat(cfg.Pricing[cfg.PremiumModel], 'f', -1, 64),
	}
	return p
}

// Strategy 当前策略
func (p *Pipeline) Strategy() Strategy {
	return p.cfg.Strategy
}

// Capabilities 生成服务能力
func (p *Pipeline) Capabilities() llm.Capabilities {
	return p.caps
}

// ProcessFile 单个文件走完整流水线，结果总是非nil
func (p *Pipeline) ProcessFile(ctx context.Context, desc naming.FileDescriptor) *naming.Result {
	ctx, done := p.tracker.track(ctx, desc.Path)
	defer done()
	return p.process(ctx, desc)
}

// GetStats 汇总结果，按配置的价格表计算费用
func (p *Pipeline) GetStats(results []*naming.Result) contracts.NamingStats {
	return ComputeStats(results, p.cfg.Pricing)
}

// Cancel 取消指定路径的进行中处理
func (p *Pipeline) Cancel(path string) bool {
	ok := p.tracker.cancel(path)
	if ok {
		logger.Info("Processing canceled", "path", path)
	}
	return ok
}

// CancelAll 取消全部进行中处理
func (p *Pipeline) CancelAll() int {
	n := p.tracker.cancelAll()
	if n > 0 {
		logger.Info("All processing canceled", "count", n)
	}
	return n
}

// Active 进行中的处理数
func (p *Pipeline) Active() int {
	return p.tracker.active()
}

// CacheStats 缓存统计，未启用缓存时返回零值
func (p *Pipeline) CacheStats() cache.Stats {
	if p.cache == nil {
		return cache.Stats{}
	}
	return p.cache.Stats()
}

func (p *Pipeline) process(ctx context.Context, desc naming.FileDescriptor) *naming.Result {
	start := time.Now()

	var key string
	if p.cache != nil {
		key = cache.Key(desc, p.cacheOpt)
		if cached, ok := p.cache.Get(key); ok {
			logger.Debug("Result cache hit", "path", desc.Path, "stage", cached.Stage)
			return cached
		}
	}

	result := p.run(ctx, desc)
	if p.cache != nil && result.Succeeded() {
		p.cache.Set(key, result)
	}

	if result.Error != "" {
		logger.Warn("File naming failed",
			"path", desc.Path,
			"error", result.Error,
			"tokens_used", result.TokensUsed,
			"duration", time.Since(start))
	} else {
		logger.Info("File named",
			"path", desc.Path,
			"name", result.SuggestedName,
			"stage", result.Stage,
			"confidence", fmt.Sprintf("%.2f", result.Confidence),
			"tokens_used", result.TokensUsed,
			"duration", time.Since(start))
	}
	return result
}

func canceledResult(desc naming.FileDescriptor, err error) *naming.Result {
	return &naming.Result{
		OriginalPath: desc.Path,
		Extension:    desc.Ext(),
		Error:        fmt.Sprintf("%v: %v", ErrCanceled, err),
	}
}
