package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const (
	DefaultCapacity = 1000
	DefaultTTL      = time.Hour
)

type entry struct {
	result   *naming.Result
	lastSeen time.Time
}

// ResultCache 命名结果缓存
// 容量满时按LRU淘汰；TTL为滑动过期，每次命中刷新
type ResultCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, entry]
	ttl time.Duration
	now func() time.Time

	hits   uint64
	misses uint64
}

// Stats 缓存统计
type Stats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Option 缓存选项
type Option func(*ResultCache)

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New 创建缓存，capacity<=0 或 ttl<=0 时使用默认值
func New(capacity int, ttl time.Duration, opts ...Option) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	lru, err := simplelru.NewLRU[string, entry](capacity, func(key string, _ entry) {
		logger.Debug("Result cache evicted entry", "key", key)
	})
	if err != nil {
		return nil, err
	}

	c := &ResultCache{lru: lru, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get 命中时返回结果副本并刷新过期时间
func (c *ResultCache) Get(key string) (*naming.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}

	now := c.now()
	if now.Sub(e.lastSeen) > c.ttl {
		c.lru.Remove(key)
		c.misses++
		return nil, false
	}

	e.lastSeen = now
	c.lru.Add(key, e)
	c.hits++
	return e.result.Clone(), true
}

// Set 写入结果副本，失败结果不缓存
func (c *ResultCache) Set(key string, result *naming.Result) {
	if result == nil || result.Error != "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry{result: result.Clone(), lastSeen: c.now()})
}

// Remove 删除指定键
func (c *ResultCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Purge 清空缓存
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len 当前条目数（含尚未清理的过期条目）
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats 返回命中统计
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: c.lru.Len(), Hits: c.hits, Misses: c.misses}
}
