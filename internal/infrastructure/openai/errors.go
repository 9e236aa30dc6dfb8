package openai

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey API密钥缺失错误
	ErrMissingAPIKey = errors.New("openai api key is required")

	// ErrInvalidConfig 配置无效错误
	ErrInvalidConfig = errors.New("invalid openai config")

	// ErrEmptyResponse 空响应错误
	ErrEmptyResponse = errors.New("openai returned no choices")
)

// APIError 非2xx响应
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
	RetryAfter time.Duration // 来自 Retry-After 或 x-ratelimit-reset-* 头，0 表示未知
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if e.Type != "" {
		return fmt.Sprintf("openai api error: http %d (%s): %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("openai api error: http %d: %s", e.StatusCode, msg)
}

// parseRetryAfter 解析 Retry-After：秒数或HTTP日期
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

// retryAfterFromHeaders 依次尝试 Retry-After 和 OpenAI 的限流重置头（如 "6m0s"、"1.5s"）
func retryAfterFromHeaders(h http.Header) time.Duration {
	if d, ok := parseRetryAfter(h.Get("Retry-After")); ok {
		return d
	}
	var longest time.Duration
	for _, key := range []string{"x-ratelimit-reset-requests", "x-ratelimit-reset-tokens"} {
		if d, err := time.ParseDuration(strings.TrimSpace(h.Get(key))); err == nil && d > longest {
			longest = d
		}
	}
	return longest
}
