package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter QPS 限制器
// 除令牌桶外还支持服务端下发的限流重置时间（PauseUntil）
type RateLimiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewRateLimiter 创建新的速率限制器
// qps: 每秒允许的请求数，如果为0或负数则不限制
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// 允许短时间内的突发请求（桶大小为QPS）
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), qps),
	}
}

// Wait 等待暂停期结束并获得令牌
func (r *RateLimiter) Wait(ctx context.Context) error {
	if until := r.PausedUntil(); !until.IsZero() {
		if delay := time.Until(until); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return r.limiter.Wait(ctx)
}

// Allow 检查是否允许当前请求，不阻塞
func (r *RateLimiter) Allow() bool {
	if until := r.PausedUntil(); !until.IsZero() && time.Now().Before(until) {
		return false
	}
	return r.limiter.Allow()
}

// PauseUntil 暂停发放令牌直到指定时间，只会延长不会缩短
func (r *RateLimiter) PauseUntil(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.After(r.pausedUntil) {
		r.pausedUntil = t
	}
}

// PausedUntil 当前暂停截止时间，已过期返回零值
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pausedUntil.IsZero() && time.Now().After(r.pausedUntil) {
		r.pausedUntil = time.Time{}
	}
	return r.pausedUntil
}

// SetQPS 动态设置QPS限制
func (r *RateLimiter) SetQPS(qps int) {
	if qps <= 0 {
		r.limiter.SetLimit(rate.Inf)
		r.limiter.SetBurst(1)
	} else {
		r.limiter.SetLimit(rate.Limit(qps))
		r.limiter.SetBurst(qps)
	}
}

// GetQPS 获取当前QPS限制
func (r *RateLimiter) GetQPS() int {
	limit := r.limiter.Limit()
	if limit == rate.Inf {
		return 0 // 表示无限制
	}
	return int(limit)
}
