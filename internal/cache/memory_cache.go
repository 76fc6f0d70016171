package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value      V
	expiration int64 // Unix nanoseconds; zero = no expire
}

func (i item[V]) expired(now int64) bool {
	return i.expiration > 0 && now > i.expiration
}

type shard[V any] struct {
	sync.Mutex
	items map[string]item[V]
}

// MemoryCache is a sharded in-process cache swept by a janitor goroutine.
type MemoryCache[V any] struct {
	shards []*shard[V]
	quit   chan struct{}
	once   sync.Once
}

// NewMemoryCache creates a 32-shard cache with a 1s janitor.
func NewMemoryCache[V any]() *MemoryCache[V] {
	return NewMemoryCacheWithOptions[V](32, time.Second)
}

// NewMemoryCacheWithOptions allows customizing shard count & janitor interval.
func NewMemoryCacheWithOptions[V any](shardCount int, janitorInterval time.Duration) *MemoryCache[V] {
	if shardCount < 1 {
		shardCount = 1
	}
	mc := &MemoryCache[V]{
		shards: make([]*shard[V], shardCount),
		quit:   make(chan struct{}),
	}
	for i := range mc.shards {
		mc.shards[i] = &shard[V]{items: make(map[string]item[V])}
	}
	go mc.janitor(janitorInterval)
	return mc
}

// Close stops the janitor. It is safe to call more than once.
func (mc *MemoryCache[V]) Close() error {
	mc.once.Do(func() { close(mc.quit) })
	return nil
}

func (mc *MemoryCache[V]) shardFor(key string) *shard[V] {
	return mc.shards[fnv32(key)%uint32(len(mc.shards))]
}

func fnv32(key string) uint32 {
	const offset = 2166136261
	const prime = 16777619
	h := uint32(offset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime
	}
	return h
}

func (mc *MemoryCache[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	s := mc.shardFor(key)

	s.Lock()
	defer s.Unlock()

	itm, ok := s.items[key]
	if !ok {
		return zero, ErrCacheMiss
	}
	if itm.expired(time.Now().UnixNano()) {
		delete(s.items, key)
		return zero, ErrCacheMiss
	}
	return itm.value, nil
}

func (mc *MemoryCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	s := mc.shardFor(key)
	s.Lock()
	s.items[key] = item[V]{value: value, expiration: exp}
	s.Unlock()
	return nil
}

func (mc *MemoryCache[V]) Delete(_ context.Context, key string) error {
	s := mc.shardFor(key)
	s.Lock()
	delete(s.items, key)
	s.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (mc *MemoryCache[V]) Len() int {
	n := 0
	for _, s := range mc.shards {
		s.Lock()
		n += len(s.items)
		s.Unlock()
	}
	return n
}

func (mc *MemoryCache[V]) sweep() {
	now := time.Now().UnixNano()
	for _, s := range mc.shards {
		s.Lock()
		for k, itm := range s.items {
			if itm.expired(now) {
				delete(s.items, k)
			}
		}
		s.Unlock()
	}
}

func (mc *MemoryCache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.sweep()
		case <-mc.quit:
			return
		}
	}
}
