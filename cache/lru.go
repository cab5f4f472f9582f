package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// LRU 进程内缓存, 未配置 Redis 时使用
type LRU struct {
	cache *lru.Cache
}

// NewLRU 创建容量为 size 的 LRU 缓存
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("创建 LRU 缓存失败: %w", err)
	}
	return &LRU{cache: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) (string, bool) {
	val, ok := l.cache.Get(key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

func (l *LRU) Set(_ context.Context, key string, value string) error {
	l.cache.Add(key, value)
	return nil
}

// Len 当前缓存条目数
func (l *LRU) Len() int {
	return l.cache.Len()
}
