package invoker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
)

// scriptedService 按顺序返回预设错误，用尽后返回成功
type scriptedService struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedService) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &llm.Response{Text: `{"name":"ok"}`, Model: req.Model, Usage: llm.Usage{TotalTokens: 42}}, nil
}

func (s *scriptedService) Capabilities() llm.Capabilities {
	return llm.Capabilities{Provider: "fake", Vision: true}
}

func (s *scriptedService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingSleeper 记录等待时长但不真正等待
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func (r *recordingSleeper) Total() time.Duration {
	var total time.Duration
	for _, d := range r.delays {
		total += d
	}
	return total
}

func maxJitter(max time.Duration) time.Duration { return max }

func testConfig() Config {
	return Config{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       10 * time.Second,
		JitterFraction: DefaultJitterFraction,
	}
}

func repeatErr(err error, n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}

func TestInvokeSucceedsFirstTry(t *testing.T) {
	svc := &scriptedService{}
	sleeper := &recordingSleeper{}
	inv := New(svc, testConfig(), WithSleeper(sleeper.Sleep))

	resp, state, err := inv.InvokeWithState(context.Background(), llm.Request{Model: "cheap"})
	if err != nil {
		t.Fatalf("InvokeWithState() error = %v", err)
	}
	if resp.Usage.TotalTokens != 42 {
		t.Errorf("TotalTokens = %d, want 42", resp.Usage.TotalTokens)
	}
	if state.Attempts != 1 || state.Retries != 0 {
		t.Errorf("state = %+v, want 1 attempt 0 retries", state)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("sleeper called %d times, want 0", len(sleeper.delays))
	}
}

func TestInvokeRetriesNetworkErrorsWithinBudget(t *testing.T) {
	netErr := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusServiceUnavailable, Message: "overloaded"}
	svc := &scriptedService{errs: repeatErr(netErr, 10)}
	sleeper := &recordingSleeper{}
	inv := New(svc, testConfig(), WithSleeper(sleeper.Sleep), WithJitter(maxJitter))

	_, state, err := inv.InvokeWithState(context.Background(), llm.Request{Model: "cheap"})
	if err == nil {
		t.Fatal("expected error after retries are exhausted")
	}
	if state.Retries != 3 {
		t.Errorf("Retries = %d, want 3", state.Retries)
	}
	if svc.Calls() != 4 {
		t.Errorf("calls = %d, want 4", svc.Calls())
	}
	if !errors.Is(err, ErrNetworkFailure) {
		t.Errorf("errors.Is(err, ErrNetworkFailure) = false, err = %v", err)
	}

	// 1s+2s+4s 加上最多30%的抖动
	if total := sleeper.Total(); total > 9100*time.Millisecond {
		t.Errorf("total wait = %v, want <= 9.1s", total)
	}
	want := []time.Duration{1300 * time.Millisecond, 2600 * time.Millisecond, 5200 * time.Millisecond}
	for i, d := range sleeper.delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestInvokeRateLimitedFourTimes(t *testing.T) {
	rl := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Message: "slow down", RetryAfter: 1500 * time.Millisecond}
	svc := &scriptedService{errs: repeatErr(rl, 4)}
	sleeper := &recordingSleeper{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	inv := New(svc, testConfig(),
		WithSleeper(sleeper.Sleep),
		WithJitter(func(time.Duration) time.Duration { return 0 }),
		WithClock(func() time.Time { return now }),
	)

	_, err := inv.Invoke(context.Background(), llm.Request{Model: "cheap"})
	var ierr *Error
	if !errors.As(err, &ierr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ierr.Kind != KindRateLimit {
		t.Errorf("Kind = %s, want rate_limit", ierr.Kind)
	}
	if ierr.Retries != 3 || ierr.Attempts != 4 {
		t.Errorf("retries=%d attempts=%d, want 3 and 4", ierr.Retries, ierr.Attempts)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("errors.Is(err, ErrRateLimited) = false")
	}
	if !ierr.ResetAt.Equal(now.Add(1500 * time.Millisecond)) {
		t.Errorf("ResetAt = %v", ierr.ResetAt)
	}
	// 第1次重试使用 Retry-After（1.5s > 1s），之后指数退避更大
	want := []time.Duration{1500 * time.Millisecond, 2 * time.Second, 4 * time.Second}
	for i, d := range sleeper.delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}

	m := inv.Metrics()
	if m.RateLimited != 4 || m.Retries != 3 || m.Failures != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestInvokeRecoversAfterRateLimit(t *testing.T) {
	rl := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	svc := &scriptedService{errs: []error{rl, rl}}
	sleeper := &recordingSleeper{}
	inv := New(svc, testConfig(), WithSleeper(sleeper.Sleep))

	resp, state, err := inv.InvokeWithState(context.Background(), llm.Request{Model: "cheap"})
	if err != nil {
		t.Fatalf("InvokeWithState() error = %v", err)
	}
	if resp == nil || state.Retries != 2 || state.Attempts != 3 {
		t.Errorf("state = %+v", state)
	}
	if m := inv.Metrics(); m.Successes != 1 || m.Attempts != 3 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestInvokeAuthFailureNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"401状态码", &llm.ProviderError{Provider: "fake", StatusCode: http.StatusUnauthorized, Message: "bad key"}},
		{"403状态码", &llm.ProviderError{Provider: "fake", StatusCode: http.StatusForbidden, Message: "nope"}},
		{"消息匹配", errors.New("Invalid API key provided")},
		{"未启用", llm.ErrDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &scriptedService{errs: []error{tt.err}}
			sleeper := &recordingSleeper{}
			inv := New(svc, testConfig(), WithSleeper(sleeper.Sleep))

			_, err := inv.Invoke(context.Background(), llm.Request{})
			if !errors.Is(err, ErrAuthFailure) {
				t.Fatalf("err = %v, want ErrAuthFailure", err)
			}
			if svc.Calls() != 1 {
				t.Errorf("calls = %d, want 1", svc.Calls())
			}
			if len(sleeper.delays) != 0 {
				t.Errorf("sleeper called %d times", len(sleeper.delays))
			}
			if !errors.Is(err, tt.err) {
				t.Error("original error not reachable via errors.Is")
			}
		})
	}
}

func TestInvokeUnknownErrorNotRetried(t *testing.T) {
	svc := &scriptedService{errs: []error{&llm.ProviderError{Provider: "fake", StatusCode: http.StatusBadRequest, Message: "bad request"}}}
	inv := New(svc, testConfig(), WithSleeper((&recordingSleeper{}).Sleep))

	_, err := inv.Invoke(context.Background(), llm.Request{})
	if !errors.Is(err, ErrUnknownFailure) {
		t.Fatalf("err = %v, want ErrUnknownFailure", err)
	}
	if svc.Calls() != 1 {
		t.Errorf("calls = %d, want 1", svc.Calls())
	}
}

func TestInvokeStopsOnCancellation(t *testing.T) {
	netErr := errors.New("connection reset by peer")
	svc := &scriptedService{errs: repeatErr(netErr, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	sleeper := func(ctx context.Context, d time.Duration) error {
		sleeps++
		cancel()
		return ctx.Err()
	}
	inv := New(svc, testConfig(), WithSleeper(sleeper))

	_, err := inv.Invoke(ctx, llm.Request{})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
	if svc.Calls() != 1 {
		t.Errorf("calls = %d, want 1", svc.Calls())
	}
	if sleeps != 1 {
		t.Errorf("sleeps = %d, want 1", sleeps)
	}
}

func TestInvokeAlreadyCanceled(t *testing.T) {
	svc := &scriptedService{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv := New(svc, testConfig())
	_, err := inv.Invoke(ctx, llm.Request{})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
	if svc.Calls() != 0 {
		t.Errorf("calls = %d, want 0", svc.Calls())
	}
}

// slowService 阻塞直到ctx结束
type slowService struct {
	calls int
}

func (s *slowService) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *slowService) Capabilities() llm.Capabilities { return llm.Capabilities{Provider: "slow"} }

func TestInvokeAttemptTimeoutIsNetwork(t *testing.T) {
	svc := &slowService{}
	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.RequestTimeout = 10 * time.Millisecond
	inv := New(svc, cfg, WithSleeper((&recordingSleeper{}).Sleep))

	_, err := inv.Invoke(context.Background(), llm.Request{})
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("err = %v, want ErrNetworkFailure", err)
	}
	if svc.calls != 2 {
		t.Errorf("calls = %d, want 2", svc.calls)
	}
}

func TestBackoff(t *testing.T) {
	inv := New(&scriptedService{}, testConfig())
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{20, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("retry_%d", tt.retry), func(t *testing.T) {
			if got := inv.Backoff(tt.retry); got != tt.want {
				t.Errorf("Backoff(%d) = %v, want %v", tt.retry, got, tt.want)
			}
		})
	}
}

func TestDelayJitterBounded(t *testing.T) {
	inv := New(&scriptedService{}, testConfig())
	for retry := 1; retry <= 5; retry++ {
		base := inv.Backoff(retry)
		for n := 0; n < 50; n++ {
			d := inv.delayFor(retry, Classification{Kind: KindNetwork})
			if d < base || d > base+time.Duration(float64(base)*0.3) {
				t.Fatalf("delayFor(%d) = %v outside [%v, %v]", retry, d, base, base*13/10)
			}
		}
	}
}

func TestInvokePublishesEvents(t *testing.T) {
	bus := events.NewBus(16)

	var mu sync.Mutex
	var got []events.Type
	done := make(chan struct{}, 8)
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
		done <- struct{}{}
	})

	rl := &llm.ProviderError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	svc := &scriptedService{errs: []error{rl}}
	inv := New(svc, testConfig(), WithSleeper((&recordingSleeper{}).Sleep), WithEventBus(bus))

	if _, err := inv.Invoke(context.Background(), llm.Request{Model: "cheap"}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	// started, error, rate_limited, response
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	want := []events.Type{events.RequestStarted, events.Error, events.RateLimited, events.Response}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCapabilitiesReadOnce(t *testing.T) {
	inv := New(&scriptedService{}, testConfig())
	if caps := inv.Capabilities(); caps.Provider != "fake" || !caps.Vision {
		t.Errorf("Capabilities() = %+v", caps)
	}
}
