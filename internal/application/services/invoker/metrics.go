package invoker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics 调用统计，生命周期与 Invoker 相同
type Metrics struct {
	requests    atomic.Int64
	attempts    atomic.Int64
	retries     atomic.Int64
	successes   atomic.Int64
	failures    atomic.Int64
	rateLimited atomic.Int64

	mu          sync.Mutex
	latencyN    int64
	meanLatency float64 // 毫秒，增量均值
}

// MetricsSnapshot 统计快照
type MetricsSnapshot struct {
	Requests      int64   `json:"requests"`
	Attempts      int64   `json:"attempts"`
	Retries       int64   `json:"retries"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	RateLimited   int64   `json:"rate_limited"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
}

func (m *Metrics) observeLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencyN++
	ms := float64(d) / float64(time.Millisecond)
	m.meanLatency += (ms - m.meanLatency) / float64(m.latencyN)
}

// Snapshot 返回当前统计
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	mean := m.meanLatency
	m.mu.Unlock()

	return MetricsSnapshot{
		Requests:      m.requests.Load(),
		Attempts:      m.attempts.Load(),
		Retries:       m.retries.Load(),
		Successes:     m.successes.Load(),
		Failures:      m.failures.Load(),
		RateLimited:   m.rateLimited.Load(),
		MeanLatencyMs: mean,
	}
}
