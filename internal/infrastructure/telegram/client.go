package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// ErrNotInitialized bot未创建成功
var ErrNotInitialized = errors.New("telegram bot not initialized")

// sender tgbotapi.BotAPI 中用到的发送能力
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client Telegram通知客户端，实现 contracts.Notifier
type Client struct {
	config *config.TelegramConfig
	bot    sender
}

var _ contracts.Notifier = (*Client)(nil)

// NewClient 创建客户端，token无效时返回的Client不可用但不会panic
func NewClient(cfg *config.TelegramConfig) *Client {
	client := &Client{config: cfg}
	if cfg == nil || !cfg.Enabled {
		return client
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return client
	}
	logger.Info("Telegram bot connected successfully", "username", bot.Self.UserName)
	client.bot = bot
	return client
}

func newClientWithSender(cfg *config.TelegramConfig, bot sender) *Client {
	return &Client{config: cfg, bot: bot}
}

// IsEnabled 已启用、bot可用且配置了接收方
func (c *Client) IsEnabled() bool {
	return c != nil && c.config != nil && c.config.Enabled && c.bot != nil && len(c.config.ChatIDs) > 0
}

// SendMessage 向所有配置的chat发送HTML消息
// 单个chat失败不影响其余chat，返回最后一个错误
func (c *Client) SendMessage(ctx context.Context, level contracts.NotificationLevel, message string) error {
	if c == nil || c.bot == nil {
		return ErrNotInitialized
	}
	if !c.IsEnabled() {
		logger.Debug("Telegram disabled or no chat IDs configured")
		return nil
	}

	text := levelPrefix(level) + cleanUTF8(message)

	var lastErr error
	for _, chatID := range c.config.ChatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := c.bot.Send(msg); err != nil {
			logger.Error("Failed to send notification", "chat_id", chatID, "error", err)
			lastErr = fmt.Errorf("send telegram message to %d: %w", chatID, err)
			continue
		}
		logger.Debug("Notification sent", "chat_id", chatID, "level", level)
	}
	return lastErr
}

func levelPrefix(level contracts.NotificationLevel) string {
	switch level {
	case contracts.NotificationLevelSuccess:
		return "✅ "
	case contracts.NotificationLevelWarning:
		return "⚠️ "
	case contracts.NotificationLevelError:
		return "❌ "
	default:
		return "ℹ️ "
	}
}

// cleanUTF8 确保文本是有效的UTF-8编码
func cleanUTF8(text string) string {
	if !utf8.ValidString(text) {
		return strings.ToValidUTF8(text, "?")
	}
	return text
}
