package cache

import (
	"ai_study_backend/pkg/logger"
	"ai_study_backend/pkg/monitoring"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind 缓存键的类别，决定默认TTL。
// 搜索结果过期最快：内容变更远比被搜索频繁。
type Kind string

const (
	KindCourse    Kind = "course"
	KindSection   Kind = "section"
	KindHierarchy Kind = "hierarchy"
	KindStats     Kind = "stats"
	KindTOC       Kind = "toc"
	KindSearch    Kind = "search"
)

const invalidateChannel = "ai_study:cache:invalidate"

type Options struct {
	Capacity int
	TTLs     map[Kind]time.Duration
}

func DefaultOptions() Options {
	return Options{
		Capacity: 1000,
		TTLs: map[Kind]time.Duration{
			KindCourse:    10 * time.Minute,
			KindSection:   10 * time.Minute,
			KindHierarchy: 5 * time.Minute,
			KindStats:     5 * time.Minute,
			KindTOC:       5 * time.Minute,
			KindSearch:    time.Minute,
		},
	}
}

type entry struct {
	value      interface{}
	kind       Kind
	tags       []string
	expiresAt  time.Time
	hits       int64
	lastAccess time.Time
}

// Cache 读路径的get-or-compute缓存：按类别TTL、标签批量失效、
// 容量超限时按近似LFU淘汰。它只是建议性的，从不作为真值来源；
// 任何缓存故障都退化为直接计算，不上抛给调用方。
// 通过构造函数显式注入，不做包级单例，便于测试各自隔离实例。
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	byTag    map[string]map[string]struct{}
	capacity int
	ttls     map[Kind]time.Duration

	rdb        *redis.Client // 可为nil；存在时把失效广播给其他实例
	instanceID string
}

// New 创建缓存。rdb 传nil则为纯进程内缓存（单实例部署/测试）。
func New(opts Options, rdb *redis.Client) *Cache {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultOptions().Capacity
	}
	ttls := DefaultOptions().TTLs
	for k, v := range opts.TTLs {
		if v > 0 {
			ttls[k] = v
		}
	}
	return &Cache{
		entries:    make(map[string]*entry),
		byTag:      make(map[string]map[string]struct{}),
		capacity:   opts.Capacity,
		ttls:       ttls,
		rdb:        rdb,
		instanceID: uuid.New().String(),
	}
}

// GetOrSet 命中且未过期直接返回；否则执行 compute 并按类别TTL缓存。
// compute 的错误原样返回且不缓存；缓存自身的问题从不影响返回值。
func (c *Cache) GetOrSet(ctx context.Context, key string, kind Kind, tags []string, compute func() (interface{}, error)) (interface{}, error) {
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if now.Before(e.expiresAt) {
			e.hits++
			e.lastAccess = now
			c.mu.Unlock()
			monitoring.CacheHits.WithLabelValues(string(kind)).Inc()
			return e.value, nil
		}
		c.removeLocked(key)
	}
	c.mu.Unlock()

	monitoring.CacheMisses.WithLabelValues(string(kind)).Inc()

	value, err := compute()
	if err != nil {
		return nil, err
	}

	ttl, ok := c.ttls[kind]
	if !ok {
		ttl = time.Minute
	}

	c.mu.Lock()
	c.entries[key] = &entry{
		value:      value,
		kind:       kind,
		tags:       tags,
		expiresAt:  now.Add(ttl),
		hits:       1,
		lastAccess: now,
	}
	for _, t := range tags {
		if c.byTag[t] == nil {
			c.byTag[t] = make(map[string]struct{})
		}
		c.byTag[t][key] = struct{}{}
	}
	c.evictLocked()
	c.mu.Unlock()

	return value, nil
}

// InvalidateTags 删除带任一标签的全部条目，并广播给其他实例
func (c *Cache) InvalidateTags(ctx context.Context, tags ...string) {
	c.invalidateLocal(tags...)

	if c.rdb == nil {
		return
	}
	payload := c.instanceID + "|" + strings.Join(tags, ",")
	if err := c.rdb.Publish(ctx, invalidateChannel, payload).Err(); err != nil {
		logger.Log.Warn("cache invalidation publish failed", zap.Error(err))
	}
}

// InvalidatePrefix 按键前缀删除，用于批量操作后的大面积失效
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key)
		}
	}
}

// Flush 清空全部条目
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.byTag = make(map[string]map[string]struct{})
}

// Len 当前条目数
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartInvalidationFanout 订阅失效广播，使多实例部署下各节点
// 的本地缓存也能被及时清理。ctx 取消时退出。
func (c *Cache) StartInvalidationFanout(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	sub := c.rdb.Subscribe(ctx, invalidateChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				sender, tags, found := strings.Cut(msg.Payload, "|")
				if !found || sender == c.instanceID {
					continue
				}
				c.invalidateLocal(strings.Split(tags, ",")...)
			}
		}
	}()
}

func (c *Cache) invalidateLocal(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		for key := range c.byTag[t] {
			c.removeLocked(key)
		}
	}
}

func (c *Cache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, t := range e.tags {
		if keys := c.byTag[t]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, t)
			}
		}
	}
}

// evictLocked 超出容量时先清过期条目，仍超限则淘汰命中数最低者
// （并列取最久未访问）。容量在千级，线性扫描足够。
func (c *Cache) evictLocked() {
	if len(c.entries) <= c.capacity {
		return
	}

	now := time.Now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.removeLocked(key)
		}
	}

	for len(c.entries) > c.capacity {
		var victim string
		var victimEntry *entry
		for key, e := range c.entries {
			if victimEntry == nil ||
				e.hits < victimEntry.hits ||
				(e.hits == victimEntry.hits && e.lastAccess.Before(victimEntry.lastAccess)) {
				victim = key
				victimEntry = e
			}
		}
		c.removeLocked(victim)
		monitoring.CacheEvictions.Inc()
	}
}
