package contracts

import (
	"context"
	"time"
)

// NotificationLevel 通知级别
type NotificationLevel string

const (
	NotificationLevelInfo    NotificationLevel = "info"
	NotificationLevelWarning NotificationLevel = "warning"
	NotificationLevelError   NotificationLevel = "error"
	NotificationLevelSuccess NotificationLevel = "success"
)

// BatchSummaryNotification 批处理完成通知
type BatchSummaryNotification struct {
	Source         string        `json:"source"` // api, scheduler, cli
	Path           string        `json:"path,omitempty"`
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	PatternApplied int           `json:"pattern_applied"`
	TotalTokens    int           `json:"total_tokens"`
	TotalCost      float64       `json:"total_cost"`
	Duration       time.Duration `json:"duration"`
}

// RateLimitNotification 服务商限流通知
type RateLimitNotification struct {
	Model   string    `json:"model"`
	ResetAt time.Time `json:"reset_at,omitempty"`
	Attempt int       `json:"attempt"`
}

// Notifier 通知发送方
type Notifier interface {
	// IsEnabled 通知渠道是否可用
	IsEnabled() bool

	// SendMessage 发送纯文本或HTML消息
	SendMessage(ctx context.Context, level NotificationLevel, message string) error
}

// NotificationService 通知服务业务契约
type NotificationService interface {
	NotifyBatchCompleted(ctx context.Context, n BatchSummaryNotification) error
	NotifyRateLimited(ctx context.Context, n RateLimitNotification) error
}
