package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache/memory"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/stretchr/testify/require"
)

const testClientIP = "203.0.113.7"

func TestRateLimitBlocksAfterMax(t *testing.T) {
	store := memory.NewMemoryCache()
	svc := NewRateLimitService(store)
	email := util.RandomEmail()

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		require.NoError(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))
		svc.RecordFailure(context.Background(), email, testClientIP)
	}

	// 第11次嘗試被擋下
	err := svc.CheckLoginAllowed(context.Background(), email, testClientIP)
	require.Error(t, err)
	require.Equal(t, er.RateLimitCode, er.CodeOf(err))
}

func TestRateLimitResetOnSuccess(t *testing.T) {
	store := memory.NewMemoryCache()
	svc := NewRateLimitService(store)
	email := util.RandomEmail()

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		svc.RecordFailure(context.Background(), email, testClientIP)
	}
	require.Error(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))

	svc.Reset(context.Background(), email, testClientIP)
	require.NoError(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))
}

func TestRateLimitFailsOpenOnStoreOutage(t *testing.T) {
	store := memory.NewMemoryCache()
	svc := NewRateLimitService(store)
	email := util.RandomEmail()

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		svc.RecordFailure(context.Background(), email, testClientIP)
	}

	// store中斷時放行, 不能讓rate limit變成登入單點故障
	store.FailAll = true
	require.NoError(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))

	store.FailAll = false
	require.Error(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))
}

func TestRateLimitIsPerEmail(t *testing.T) {
	store := memory.NewMemoryCache()
	svc := NewRateLimitService(store)
	blocked := util.RandomEmail()
	other := util.RandomEmail()

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		svc.RecordFailure(context.Background(), blocked, testClientIP)
	}

	require.Error(t, svc.CheckLoginAllowed(context.Background(), blocked, testClientIP))
	require.NoError(t, svc.CheckLoginAllowed(context.Background(), other, testClientIP))
}

func TestRateLimitIsPerIP(t *testing.T) {
	store := memory.NewMemoryCache()
	svc := NewRateLimitService(store)
	email := util.RandomEmail()

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		svc.RecordFailure(context.Background(), email, testClientIP)
	}

	// 單一IP灌錯誤密碼不會鎖死該email的其他來源
	require.Error(t, svc.CheckLoginAllowed(context.Background(), email, testClientIP))
	require.NoError(t, svc.CheckLoginAllowed(context.Background(), email, "198.51.100.9"))
}
