package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
)

type entry struct {
	value     string
	expiresAt time.Time //zero表示不過期
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache 單機版Cache實作, 供測試與本地開發使用
// 過期採lazy檢查, 語意與redis對齊即可, 不追求精準
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]entry
	//FailAll設為true時所有操作回傳錯誤, 測試store中斷情境用
	FailAll bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]entry),
	}
}

var _ cache.Cache = (*MemoryCache)(nil)

var errUnavailable = fmt.Errorf("cache: store unavailable")

func (m *MemoryCache) get(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(time.Now()) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *MemoryCache) Ping(ctx context.Context) (string, error) {
	if m.FailAll {
		return "", errUnavailable
	}
	return "PONG", nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return "", errUnavailable
	}
	e, ok := m.get(key)
	if !ok {
		return "", cache.ErrKeyNotFound
	}
	return e.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return errUnavailable
	}
	m.data[key] = newEntry(value, ttl)
	return nil
}

func (m *MemoryCache) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return false, errUnavailable
	}
	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.data[key] = newEntry(value, ttl)
	return true, nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return errUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return false, errUnavailable
	}
	_, ok := m.get(key)
	return ok, nil
}

func (m *MemoryCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return 0, errUnavailable
	}
	var cur int64
	if e, ok := m.get(key); ok {
		parsed, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, err
		}
		cur = parsed
	}
	cur++
	expiresAt := time.Time{}
	if e, ok := m.data[key]; ok {
		expiresAt = e.expiresAt
	}
	m.data[key] = entry{value: strconv.FormatInt(cur, 10), expiresAt: expiresAt}
	return cur, nil
}

func (m *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return false, errUnavailable
	}
	e, ok := m.get(key)
	if !ok {
		return false, nil
	}
	e.expiresAt = time.Now().Add(ttl)
	m.data[key] = e
	return true, nil
}

func (m *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return 0, errUnavailable
	}
	e, ok := m.get(key)
	if !ok {
		return -2 * time.Second, nil
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return time.Until(e.expiresAt), nil
}

func (m *MemoryCache) CompareAndSwap(ctx context.Context, key string, expected, newVal string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return false, errUnavailable
	}
	e, ok := m.get(key)
	if !ok || e.value != expected {
		return false, nil
	}
	m.data[key] = newEntry(newVal, ttl)
	return true, nil
}

func newEntry(value any, ttl time.Duration) entry {
	e := entry{value: fmt.Sprintf("%v", value)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	return e
}
