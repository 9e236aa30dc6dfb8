package invoker

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const (
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = time.Second
	DefaultMaxDelay       = 10 * time.Second
	DefaultJitterFraction = 0.3
)

// Config 重试配置
type Config struct {
	MaxRetries     int           // 首次调用之外的最大重试次数
	BaseDelay      time.Duration // 第1次重试前的等待
	MaxDelay       time.Duration // 指数退避上限（不含抖动）
	RequestTimeout time.Duration // 单次调用超时，0表示不限制
	JitterFraction float64       // 抖动上限占退避时长的比例
}

// DefaultConfig 默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		JitterFraction: DefaultJitterFraction,
	}
}

// ConfigFromApp 从应用配置构造重试配置
func ConfigFromApp(cfg config.RetryConfig) Config {
	return Config{
		MaxRetries:     cfg.MaxRetries,
		BaseDelay:      time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		MaxDelay:       time.Duration(cfg.MaxDelayMs) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.RequestTimeoutS) * time.Second,
		JitterFraction: DefaultJitterFraction,
	}
}

// RetryState 单次 Invoke 的重试状态
type RetryState struct {
	Attempts  int
	Retries   int
	LastErr   error
	LastDelay time.Duration
	TotalWait time.Duration
	ResetAt   time.Time
}

// Sleeper 等待函数，需在ctx取消时提前返回
type Sleeper func(ctx context.Context, d time.Duration) error

// Jitter 返回 [0, max] 内的抖动
type Jitter func(max time.Duration) time.Duration

// Option Invoker选项
type Option func(*Invoker)

// WithSleeper 替换等待函数（测试中用于跳过真实等待）
func WithSleeper(s Sleeper) Option {
	return func(i *Invoker) {
		if s != nil {
			i.sleep = s
		}
	}
}

// WithJitter 替换抖动函数
func WithJitter(j Jitter) Option {
	return func(i *Invoker) {
		if j != nil {
			i.jitter = j
		}
	}
}

// WithEventBus 发布生命周期事件
func WithEventBus(bus *events.Bus) Option {
	return func(i *Invoker) {
		i.bus = bus
	}
}

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(i *Invoker) {
		if now != nil {
			i.now = now
		}
	}
}

// Invoker 带分类重试的外部调用包装
type Invoker struct {
	service llm.Service
	cfg     Config
	caps    llm.Capabilities
	sleep   Sleeper
	jitter  Jitter
	bus     *events.Bus
	now     func() time.Time
	metrics Metrics
}

// New 创建Invoker，服务能力在此读取一次
func New(service llm.Service, cfg Config, opts ...Option) *Invoker {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.JitterFraction < 0 {
		cfg.JitterFraction = 0
	}

	i := &Invoker{
		service: service,
		cfg:     cfg,
		caps:    service.Capabilities(),
		sleep:   sleepContext,
		jitter:  randomJitter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Capabilities 底层服务的能力描述
func (i *Invoker) Capabilities() llm.Capabilities {
	return i.caps
}

// Metrics 当前统计快照
func (i *Invoker) Metrics() MetricsSnapshot {
	return i.metrics.Snapshot()
}

// Invoke 调用服务，对限流和网络错误按指数退避重试
func (i *Invoker) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	resp, _, err := i.InvokeWithState(ctx, req)
	return resp, err
}

// InvokeWithState 与 Invoke 相同，额外返回重试状态
func (i *Invoker) InvokeWithState(ctx context.Context, req llm.Request) (*llm.Response, RetryState, error) {
	requestID := uuid.NewString()
	start := i.now()
	state := RetryState{}

	i.metrics.requests.Add(1)
	i.publish(events.Event{Type: events.RequestStarted, RequestID: requestID, Model: req.Model})

	for {
		if err := ctx.Err(); err != nil {
			return nil, state, i.fail(requestID, req, start, &state, KindCanceled, err)
		}

		resp, attemptTimedOut, err := i.attempt(ctx, req)
		state.Attempts++
		i.metrics.attempts.Add(1)

		if err == nil {
			i.metrics.successes.Add(1)
			elapsed := i.now().Sub(start)
			i.metrics.observeLatency(elapsed)
			i.publish(events.Event{
				Type:      events.Response,
				RequestID: requestID,
				Model:     req.Model,
				Attempt:   state.Attempts,
				Duration:  elapsed,
				Fields:    map[string]any{"tokens_used": resp.Usage.TotalTokens, "retries": state.Retries},
			})
			return resp, state, nil
		}

		state.LastErr = err
		if ctx.Err() != nil {
			return nil, state, i.fail(requestID, req, start, &state, KindCanceled, err)
		}

		cls := Classify(err)
		if attemptTimedOut {
			cls = Classification{Kind: KindNetwork}
		}

		i.publish(events.Event{
			Type:      events.Error,
			RequestID: requestID,
			Model:     req.Model,
			Attempt:   state.Attempts,
			Err:       err.Error(),
			Fields:    map[string]any{"kind": string(cls.Kind)},
		})

		if cls.Kind == KindRateLimit {
			i.metrics.rateLimited.Add(1)
			if cls.RetryAfter > 0 {
				state.ResetAt = i.now().Add(cls.RetryAfter)
			}
			i.publish(events.Event{
				Type:      events.RateLimited,
				RequestID: requestID,
				Model:     req.Model,
				Attempt:   state.Attempts,
				Fields:    map[string]any{"reset_at": state.ResetAt, "retry_after": cls.RetryAfter},
			})
		}

		if !cls.Kind.Retryable() || state.Retries >= i.cfg.MaxRetries {
			return nil, state, i.fail(requestID, req, start, &state, cls.Kind, err)
		}

		state.Retries++
		i.metrics.retries.Add(1)
		delay := i.delayFor(state.Retries, cls)
		state.LastDelay = delay
		state.TotalWait += delay

		logger.Warn("Provider call failed, retrying",
			"request_id", requestID,
			"model", req.Model,
			"kind", cls.Kind,
			"retry", state.Retries,
			"delay", delay,
			"error", err,
		)

		if err := i.sleep(ctx, delay); err != nil {
			return nil, state, i.fail(requestID, req, start, &state, KindCanceled, state.LastErr)
		}
	}
}

// attempt 执行单次调用，timedOut 表示单次调用超时而外层ctx仍有效
func (i *Invoker) attempt(ctx context.Context, req llm.Request) (resp *llm.Response, timedOut bool, err error) {
	attemptCtx := ctx
	cancel := func() {}
	if i.cfg.RequestTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, i.cfg.RequestTimeout)
	}
	defer cancel()

	resp, err = i.service.Generate(attemptCtx, req)
	if err == nil && resp == nil {
		err = errors.New("provider returned nil response")
	}
	timedOut = err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
	return resp, timedOut, err
}

// Backoff 第 retry 次重试的基础退避：min(base*2^(retry-1), max)
func (i *Invoker) Backoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := i.cfg.BaseDelay
	for n := 1; n < retry; n++ {
		delay *= 2
		if delay >= i.cfg.MaxDelay {
			return i.cfg.MaxDelay
		}
	}
	if delay > i.cfg.MaxDelay {
		return i.cfg.MaxDelay
	}
	return delay
}

func (i *Invoker) delayFor(retry int, cls Classification) time.Duration {
	base := i.Backoff(retry)
	// 服务端给出的重置时间优先，但不超过退避上限
	if cls.RetryAfter > base {
		base = min(cls.RetryAfter, i.cfg.MaxDelay)
	}
	maxJitter := time.Duration(float64(base) * i.cfg.JitterFraction)
	if maxJitter <= 0 {
		return base
	}
	j := i.jitter(maxJitter)
	if j < 0 {
		j = 0
	}
	if j > maxJitter {
		j = maxJitter
	}
	return base + j
}

func (i *Invoker) fail(requestID string, req llm.Request, start time.Time, state *RetryState, kind ErrorKind, err error) error {
	i.metrics.failures.Add(1)
	i.metrics.observeLatency(i.now().Sub(start))

	if kind == KindCanceled {
		i.publish(events.Event{Type: events.Error, RequestID: requestID, Model: req.Model, Attempt: state.Attempts, Err: err.Error(), Fields: map[string]any{"kind": string(kind)}})
	}

	logger.Error("Provider call failed",
		"request_id", requestID,
		"model", req.Model,
		"kind", kind,
		"attempts", state.Attempts,
		"retries", state.Retries,
		"error", err,
	)

	return &Error{
		Kind:     kind,
		Attempts: state.Attempts,
		Retries:  state.Retries,
		ResetAt:  state.ResetAt,
		Err:      err,
	}
}

func (i *Invoker) publish(e events.Event) {
	i.bus.Publish(e)
}

// sleepContext 基于timer的等待，ctx取消时立即返回
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max) + 1))
}
