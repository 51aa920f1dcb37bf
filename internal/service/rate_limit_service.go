package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
)

type IRateLimitService interface {
	// CheckLoginAllowed 檢查該email+來源IP是否已超過登入失敗上限
	// 以email+IP為粒度, 單一IP灌錯誤密碼不會鎖死該email的其他來源
	// fast store無法判定時放行, rate limit只是保護層, 不能成為登入單點故障
	//
	// 可能的錯誤:
	//   - 請求過多 429
	CheckLoginAllowed(ctx context.Context, email, ip string) error
	// RecordFailure 記錄一次登入失敗
	// 第一次失敗時設定時間窗, 窗內累計
	RecordFailure(ctx context.Context, email, ip string)
	// Reset 登入成功後清除該email+IP的失敗計數
	Reset(ctx context.Context, email, ip string)
}

// RateLimitService 登入失敗次數限制
type RateLimitService struct {
	cache cache.Cache
	max   int64
}

func NewRateLimitService(cache cache.Cache) IRateLimitService {
	if cache == nil {
		panic("NewRateLimitService: nil dependency")
	}
	return &RateLimitService{
		cache: cache,
		max:   constants.LoginRateLimitMax,
	}
}

func loginLimitKey(email, ip string) string {
	return fmt.Sprintf("%s:%s:%s", constants.LoginLimitKeyPrefix, email, ip)
}

func (r *RateLimitService) CheckLoginAllowed(ctx context.Context, email, ip string) error {
	fctx, cancel := fastCtx(ctx)
	defer cancel()

	val, err := r.cache.Get(fctx, loginLimitKey(email, ip))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil
		}
		// fail open: store中斷時不擋登入
		return nil
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil
	}
	if count >= r.max {
		return er.New(er.RateLimitCode, "too many failed login attempts")
	}
	return nil
}

func (r *RateLimitService) RecordFailure(ctx context.Context, email, ip string) {
	fctx, cancel := fastCtx(ctx)
	defer cancel()

	count, err := r.cache.Incr(fctx, loginLimitKey(email, ip))
	if err != nil {
		return
	}
	if count == 1 {
		_, _ = r.cache.Expire(fctx, loginLimitKey(email, ip), constants.LoginRateLimitWindow)
	}
}

func (r *RateLimitService) Reset(ctx context.Context, email, ip string) {
	fctx, cancel := fastCtx(ctx)
	defer cancel()
	_ = r.cache.Delete(fctx, loginLimitKey(email, ip))
}
