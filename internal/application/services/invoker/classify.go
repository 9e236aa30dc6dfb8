package invoker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
)

// ErrorKind 调用失败分类
type ErrorKind string

const (
	KindRateLimit ErrorKind = "rate_limit"
	KindAuth      ErrorKind = "auth"
	KindNetwork   ErrorKind = "network"
	KindUnknown   ErrorKind = "unknown"
	KindCanceled  ErrorKind = "canceled"
)

var (
	ErrRateLimited    = errors.New("provider rate limited")
	ErrAuthFailure    = errors.New("provider authentication failed")
	ErrNetworkFailure = errors.New("provider network failure")
	ErrUnknownFailure = errors.New("provider request failed")
	ErrCanceled       = errors.New("provider request canceled")
)

// Sentinel 分类对应的哨兵错误
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindRateLimit:
		return ErrRateLimited
	case KindAuth:
		return ErrAuthFailure
	case KindNetwork:
		return ErrNetworkFailure
	case KindCanceled:
		return ErrCanceled
	default:
		return ErrUnknownFailure
	}
}

// Retryable 该分类是否允许重试
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimit || k == KindNetwork
}

// Classification 单次失败的分类结果
type Classification struct {
	Kind       ErrorKind
	RetryAfter time.Duration // 仅限流时有意义
}

var (
	rateLimitPattern = regexp.MustCompile(`(?i)(rate[\s_-]?limit|too many requests|\b429\b)`)
	authPattern      = regexp.MustCompile(`(?i)(unauthori[sz]ed|forbidden|invalid[\s_-]?api[\s_-]?key|authentication|permission denied|\b401\b|\b403\b)`)
	networkPattern   = regexp.MustCompile(`(?i)(time[d]?[\s_-]?out|connection reset|connection refused|broken pipe|\beof\b|no such host|temporarily unavailable|server overloaded)`)
)

// Classify 对一次调用失败进行分类
//   - 限流（429 或消息匹配）：可重试，记录重置时间
//   - 鉴权（401/403 或消息匹配）：不可重试
//   - 网络/超时（net.Error 超时、单次调用超时、408、502/503/504、连接类错误）：可重试
//   - 其他：不可重试
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown}
	}
	if errors.Is(err, llm.ErrDisabled) {
		return Classification{Kind: KindAuth}
	}
	if errors.Is(err, context.Canceled) {
		return Classification{Kind: KindCanceled}
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		switch perr.StatusCode {
		case http.StatusTooManyRequests:
			return Classification{Kind: KindRateLimit, RetryAfter: perr.RetryAfter}
		case http.StatusUnauthorized, http.StatusForbidden:
			return Classification{Kind: KindAuth}
		case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return Classification{Kind: KindNetwork}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Classification{Kind: KindNetwork}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Classification{Kind: KindNetwork}
	}

	msg := err.Error()
	switch {
	case rateLimitPattern.MatchString(msg):
		c := Classification{Kind: KindRateLimit}
		if perr != nil {
			c.RetryAfter = perr.RetryAfter
		}
		return c
	case authPattern.MatchString(msg):
		return Classification{Kind: KindAuth}
	case networkPattern.MatchString(msg):
		return Classification{Kind: KindNetwork}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Classification{Kind: KindNetwork}
	}

	return Classification{Kind: KindUnknown}
}

// Error 重试结束后返回给调用方的错误
type Error struct {
	Kind     ErrorKind
	Attempts int
	Retries  int
	ResetAt  time.Time // 最近一次限流的重置时间
	Err      error     // 最后一次失败
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d retries: %v", strings.ReplaceAll(string(e.Kind), "_", " "), e.Retries, e.Err)
}

// Unwrap 同时暴露分类哨兵和原始错误
func (e *Error) Unwrap() []error {
	return []error{e.Kind.Sentinel(), e.Err}
}
