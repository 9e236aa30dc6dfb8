package notification

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/events"
)

type fakeNotifier struct {
	mu       sync.Mutex
	enabled  bool
	messages []string
	levels   []contracts.NotificationLevel
}

func (f *fakeNotifier) IsEnabled() bool { return f.enabled }

func (f *fakeNotifier) SendMessage(_ context.Context, level contracts.NotificationLevel, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	f.levels = append(f.levels, level)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestNotifyBatchCompleted(t *testing.T) {
	tests := []struct {
		name      string
		failed    int
		wantLevel contracts.NotificationLevel
	}{
		{"全部成功", 0, contracts.NotificationLevelSuccess},
		{"部分失败", 2, contracts.NotificationLevelWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeNotifier{enabled: true}
			s := NewAppNotificationService(fake, 0)
			err := s.NotifyBatchCompleted(context.Background(), contracts.BatchSummaryNotification{
				Source:      "scheduler",
				Path:        "/data/<photos>",
				Total:       10,
				Succeeded:   10 - tt.failed,
				Failed:      tt.failed,
				TotalTokens: 1050,
				TotalCost:   0.0021,
				Duration:    90 * time.Second,
			})
			if err != nil {
				t.Fatalf("NotifyBatchCompleted() error = %v", err)
			}
			if fake.count() != 1 || fake.levels[0] != tt.wantLevel {
				t.Fatalf("levels = %v, want [%s]", fake.levels, tt.wantLevel)
			}
			msg := fake.messages[0]
			for _, want := range []string{"scheduler", "&lt;photos&gt;", "Token: 1050", "$0.002100"} {
				if !strings.Contains(msg, want) {
					t.Errorf("message missing %q:\n%s", want, msg)
				}
			}
		})
	}
}

func TestNotifyDisabled(t *testing.T) {
	fake := &fakeNotifier{enabled: false}
	s := NewAppNotificationService(fake, 0)
	if err := s.NotifyBatchCompleted(context.Background(), contracts.BatchSummaryNotification{Total: 1}); err != nil {
		t.Fatal(err)
	}
	if fake.count() != 0 {
		t.Errorf("disabled notifier received %d messages", fake.count())
	}

	if err := NewAppNotificationService(nil, 0).NotifyRateLimited(context.Background(), contracts.RateLimitNotification{}); err != nil {
		t.Errorf("nil notifier error = %v", err)
	}
}

func TestRateLimitThrottle(t *testing.T) {
	fake := &fakeNotifier{enabled: true}
	s := NewAppNotificationService(fake, time.Minute)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	send := func(model string) {
		t.Helper()
		if err := s.NotifyRateLimited(context.Background(), contracts.RateLimitNotification{Model: model, Attempt: 1}); err != nil {
			t.Fatal(err)
		}
	}

	send("gpt-4o")
	send("gpt-4o")
	send("gpt-4o-mini")
	if fake.count() != 2 {
		t.Fatalf("sent %d, want 2 (second gpt-4o throttled)", fake.count())
	}

	now = now.Add(2 * time.Minute)
	send("gpt-4o")
	if fake.count() != 3 {
		t.Errorf("sent %d after interval, want 3", fake.count())
	}
}

func TestSubscribe(t *testing.T) {
	fake := &fakeNotifier{enabled: true}
	s := NewAppNotificationService(fake, 0)
	bus := events.NewBus(8)
	s.Subscribe(bus)

	bus.Publish(events.Event{Type: events.Response, Model: "gpt-4o"})
	bus.Publish(events.Event{
		Type:     events.BatchCompleted,
		Duration: time.Second,
		Fields:   map[string]any{"source": "api", "total": 3, "succeeded": 3, "total_tokens": 120, "total_cost": 0.0003},
	})
	bus.Publish(events.Event{Type: events.RateLimited, Model: "gpt-4o", Attempt: 2})
	bus.Close()

	if fake.count() != 2 {
		t.Fatalf("sent %d, want 2", fake.count())
	}
	if !strings.Contains(fake.messages[0], "文件: 3 (成功 3 / 失败 0)") {
		t.Errorf("batch message = %q", fake.messages[0])
	}
	if !strings.Contains(fake.messages[1], "gpt-4o") {
		t.Errorf("rate limit message = %q", fake.messages[1])
	}
}
