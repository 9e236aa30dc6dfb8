package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/pkg/logger"
	"github.com/easayliu/smart-rename/pkg/utils"
	strutil "github.com/easayliu/smart-rename/pkg/utils/string"
)

const (
	// DefaultRateLimitInterval 同一模型限流通知的最小间隔
	DefaultRateLimitInterval = 5 * time.Minute
	sendTimeout              = 10 * time.Second
)

// AppNotificationService 应用层通知服务 - 实现contracts.NotificationService接口
type AppNotificationService struct {
	notifier contracts.Notifier
	interval time.Duration
	now      func() time.Time

	mu            sync.Mutex
	lastRateLimit map[string]time.Time
}

var _ contracts.NotificationService = (*AppNotificationService)(nil)

// NewAppNotificationService 创建应用通知服务，notifier为nil时所有通知静默丢弃
func NewAppNotificationService(notifier contracts.Notifier, rateLimitInterval time.Duration) *AppNotificationService {
	if rateLimitInterval <= 0 {
		rateLimitInterval = DefaultRateLimitInterval
	}
	return &AppNotificationService{
		notifier:      notifier,
		interval:      rateLimitInterval,
		now:           time.Now,
		lastRateLimit: make(map[string]time.Time),
	}
}

// Subscribe 订阅事件总线上的批处理完成和限流事件
func (s *AppNotificationService) Subscribe(bus *events.Bus) {
	bus.Subscribe(s.handleEvent)
}

func (s *AppNotificationService) handleEvent(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	var err error
	switch e.Type {
	case events.BatchCompleted:
		err = s.NotifyBatchCompleted(ctx, batchSummaryFromEvent(e))
	case events.RateLimited:
		err = s.NotifyRateLimited(ctx, contracts.RateLimitNotification{
			Model:   e.Model,
			ResetAt: fieldTime(e.Fields, "reset_at"),
			Attempt: e.Attempt,
		})
	default:
		return
	}
	if err != nil {
		logger.Warn("Notification failed", "event", e.Type, "error", err)
	}
}

// NotifyBatchCompleted 发送批处理汇总
func (s *AppNotificationService) NotifyBatchCompleted(ctx context.Context, n contracts.BatchSummaryNotification) error {
	if !s.enabled() {
		return nil
	}
	level := contracts.NotificationLevelSuccess
	if n.Failed > 0 {
		level = contracts.NotificationLevelWarning
	}
	return s.notifier.SendMessage(ctx, level, FormatBatchSummary(n))
}

// NotifyRateLimited 发送限流提醒，同一模型在间隔内只通知一次
func (s *AppNotificationService) NotifyRateLimited(ctx context.Context, n contracts.RateLimitNotification) error {
	if !s.enabled() {
		return nil
	}

	s.mu.Lock()
	now := s.now()
	if last, ok := s.lastRateLimit[n.Model]; ok && now.Sub(last) < s.interval {
		s.mu.Unlock()
		logger.Debug("Rate limit notification throttled", "model", n.Model)
		return nil
	}
	s.lastRateLimit[n.Model] = now
	s.mu.Unlock()

	return s.notifier.SendMessage(ctx, contracts.NotificationLevelWarning, FormatRateLimit(n))
}

func (s *AppNotificationService) enabled() bool {
	return s.notifier != nil && s.notifier.IsEnabled()
}

// FormatBatchSummary 批处理汇总的HTML消息
func FormatBatchSummary(n contracts.BatchSummaryNotification) string {
	var b strings.Builder
	b.WriteString("<b>批量命名完成</b>\n\n")
	fmt.Fprintf(&b, "来源: %s\n", strutil.EscapeHTML(n.Source))
	if n.Path != "" {
		fmt.Fprintf(&b, "目录: <code>%s</code>\n", strutil.EscapeHTML(n.Path))
	}
	fmt.Fprintf(&b, "文件: %d (成功 %d / 失败 %d)\n", n.Total, n.Succeeded, n.Failed)
	if n.PatternApplied > 0 {
		fmt.Fprintf(&b, "模式复用: %d\n", n.PatternApplied)
	}
	fmt.Fprintf(&b, "Token: %d\n", n.TotalTokens)
	fmt.Fprintf(&b, "费用: $%.6f\n", n.TotalCost)
	fmt.Fprintf(&b, "耗时: %s", utils.FormatDuration(n.Duration))
	return b.String()
}

// FormatRateLimit 限流提醒的HTML消息
func FormatRateLimit(n contracts.RateLimitNotification) string {
	var b strings.Builder
	b.WriteString("<b>服务商限流</b>\n\n")
	fmt.Fprintf(&b, "模型: <code>%s</code>\n", strutil.EscapeHTML(n.Model))
	fmt.Fprintf(&b, "重试次数: %d", n.Attempt)
	if !n.ResetAt.IsZero() {
		fmt.Fprintf(&b, "\n恢复时间: %s", n.ResetAt.Local().Format("15:04:05"))
	}
	return b.String()
}

func batchSummaryFromEvent(e events.Event) contracts.BatchSummaryNotification {
	return contracts.BatchSummaryNotification{
		Source:         fieldString(e.Fields, "source"),
		Path:           fieldString(e.Fields, "path"),
		Total:          fieldInt(e.Fields, "total"),
		Succeeded:      fieldInt(e.Fields, "succeeded"),
		Failed:         fieldInt(e.Fields, "failed"),
		PatternApplied: fieldInt(e.Fields, "pattern_applied"),
		TotalTokens:    fieldInt(e.Fields, "total_tokens"),
		TotalCost:      fieldFloat(e.Fields, "total_cost"),
		Duration:       e.Duration,
	}
}

func fieldString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func fieldInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func fieldFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func fieldTime(fields map[string]any, key string) time.Time {
	t, _ := fields[key].(time.Time)
	return t
}
