package utils

import (
	"fmt"
	"sync/atomic"
	"time"

	"threadboard/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache 本地 LRU 缓存，带 TTL
type Cache[V any] struct {
	lruCache *lru.Cache[string, cacheItem[V]]
	ttl      time.Duration
	clock    clockwork.Clock
	loads    singleflight.Group
	// 每次 Delete/Purge 都会递增，防止并发加载把旧值写回
	generation atomic.Uint64
}

func NewCache[V any](size int, ttl time.Duration, clock clockwork.Clock) (*Cache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache[V]{lruCache: l, ttl: ttl, clock: clock}, nil
}

// Set 设置缓存
func (c *Cache[V]) Set(key string, data V) {
	c.lruCache.Add(key, cacheItem[V]{
		data:      data,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Cache[V]) Get(key string) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	// 检查过期
	if !c.clock.Now().Before(val.expiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}
	return val.data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(keys ...string) {
	c.generation.Add(1)
	for _, key := range keys {
		c.lruCache.Remove(key)
	}
}

// Purge 清空缓存
func (c *Cache[V]) Purge() {
	c.generation.Add(1)
	c.lruCache.Purge()
}

func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}

// GetOrLoad returns the cached value for key, or calls load once for all concurrent
// callers missing on the same key. Errors are not cached.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	gen := c.generation.Load()
	v, err, _ := c.loads.Do(key, func() (any, error) {
		data, err := load()
		if err != nil {
			return nil, err
		}
		if c.generation.Load() == gen {
			c.Set(key, data)
		}
		return data, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
