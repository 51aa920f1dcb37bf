package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound key不存在
var ErrKeyNotFound = errors.New("cache: key not found")

// Cache 跨instance共享的key-value store
// token version/family pointer/blacklist/rate limit counter都放這裡,
// 所有呼叫都在請求熱路徑上, 呼叫端必須帶短timeout的ctx
type Cache interface {
	// 基本操作
	Ping(ctx context.Context) (string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// counter操作
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	// CompareAndSwap 當key現值等於expected時替換為newVal並重設ttl
	// 回傳是否交換成功; key不存在視為不成功
	// rotation的單一寫入點, 兩個並發refresh恰好一個成功
	CompareAndSwap(ctx context.Context, key string, expected, newVal string, ttl time.Duration) (bool, error)
}
