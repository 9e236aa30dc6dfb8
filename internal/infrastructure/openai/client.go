package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/easayliu/smart-rename/internal/infrastructure/ratelimit"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const maxErrorBodyBytes = 8 << 10

// Client OpenAI API客户端
type Client struct {
	config      *Config                // 配置
	httpClient  *http.Client           // HTTP客户端
	rateLimiter *ratelimit.RateLimiter // 速率限制器
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithRateLimiter 使用外部速率限制器，同一账号下的多个客户端共享配额
func WithRateLimiter(rl *ratelimit.RateLimiter) ClientOption {
	return func(c *Client) {
		if rl != nil {
			c.rateLimiter = rl
		}
	}
}

// NewClient 创建OpenAI客户端
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: ratelimit.NewRateLimiter(config.QPS),
	}
	for _, opt := range opts {
		opt(c)
	}

	logger.Info("Creating OpenAI client",
		"base_url", config.BaseURL,
		"model", config.Model,
		"qps", config.QPS,
		"timeout", config.Timeout,
	)

	return c, nil
}

// ChatCompletion 执行Chat Completion请求
func (c *Client) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	logger.Debug("Sending OpenAI chat request",
		"model", req.Model,
		"messages_count", len(req.Messages),
		"temperature", req.Temperature,
	)

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(c.config.BaseURL, "/")+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := c.handleErrorResponse(resp)
		if apiErr.StatusCode == http.StatusTooManyRequests && apiErr.RetryAfter > 0 {
			c.rateLimiter.PauseUntil(time.Now().Add(apiErr.RetryAfter))
		}
		return nil, apiErr
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.Debug("OpenAI chat response received",
		"id", chatResp.ID,
		"choices_count", len(chatResp.Choices),
		"total_tokens", chatResp.Usage.TotalTokens,
	)

	return &chatResp, nil
}

// setHeaders 设置请求头
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
}

// handleErrorResponse 把非200响应转换为 *APIError
func (c *Client) handleErrorResponse(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfterFromHeaders(resp.Header),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		apiErr.Message = fmt.Sprintf("read error body: %v", err)
		return apiErr
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Type = errResp.Error.Type
		apiErr.Code = errResp.Error.Code
		apiErr.Message = errResp.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// Config 返回客户端配置（只读）
func (c *Client) Config() *Config {
	return c.config
}

// RateLimiter 返回客户端使用的速率限制器
func (c *Client) RateLimiter() *ratelimit.RateLimiter {
	return c.rateLimiter
}
