package pipeline

import (
	"context"
	"sync"
)

// tracker 记录进行中的文件处理，用于按路径取消
type tracker struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[string]map[uint64]context.CancelFunc
}

func newTracker() *tracker {
	return &tracker{entries: make(map[string]map[uint64]context.CancelFunc)}
}

// track 派生可取消的ctx，返回的 done 必须在处理结束时调用
func (t *tracker) track(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	if t.entries[key] == nil {
		t.entries[key] = make(map[uint64]context.CancelFunc)
	}
	t.entries[key][id] = cancel
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		delete(t.entries[key], id)
		if len(t.entries[key]) == 0 {
			delete(t.entries, key)
		}
		t.mu.Unlock()
		cancel()
	}
}

// cancel 取消指定路径的所有进行中处理
func (t *tracker) cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cancels, ok := t.entries[key]
	if !ok {
		return false
	}
	for _, c := range cancels {
		c()
	}
	return true
}

// cancelAll 取消全部，返回被取消的处理数
func (t *tracker) cancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, cancels := range t.entries {
		for _, c := range cancels {
			c()
			n++
		}
	}
	return n
}

func (t *tracker) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, cancels := range t.entries {
		n += len(cancels)
	}
	return n
}
