package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/easayliu/smart-rename/pkg/logger"
)

// Type 事件类型
type Type string

const (
	RequestStarted Type = "request_started"
	Response       Type = "response"
	Error          Type = "error"
	RateLimited    Type = "rate_limited"
	BatchCompleted Type = "batch_completed"
)

// DefaultBufferSize 默认事件缓冲区大小
const DefaultBufferSize = 256

// Event 生命周期事件
type Event struct {
	Type      Type           `json:"type"`
	Time      time.Time      `json:"time"`
	RequestID string         `json:"request_id,omitempty"`
	Model     string         `json:"model,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Err       string         `json:"error,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Handler 事件处理函数，在分发goroutine中串行执行
type Handler func(Event)

// Bus 非阻塞事件总线
// Publish 不会阻塞调用方，缓冲区满时丢弃事件并计数
type Bus struct {
	ch      chan Event
	mu      sync.RWMutex
	subs    []Handler
	closed  bool
	dropped atomic.Uint64
	done    chan struct{}
}

// NewBus 创建事件总线并启动分发goroutine
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	b := &Bus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe 注册订阅者
func (b *Bus) Subscribe(h Handler) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, h)
}

// Publish 发布事件，nil Bus 上调用是空操作
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- e:
	default:
		b.dropped.Add(1)
	}
}

// Dropped 因缓冲区满被丢弃的事件数
func (b *Bus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

// Close 停止接收新事件，等待已缓冲的事件分发完毕
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.ch {
		b.mu.RLock()
		subs := make([]Handler, len(b.subs))
		copy(subs, b.subs)
		b.mu.RUnlock()

		for _, h := range subs {
			b.deliver(h, e)
		}
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked", "event", e.Type, "panic", r)
		}
	}()
	h(e)
}
