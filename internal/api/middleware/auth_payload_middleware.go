package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/authkeeper/internal/service"
)

// AuthPayloadMiddleware 驗證token 但若token有任何錯誤都不會中斷
// 這裡僅做解析token payload, 若payload有錯誤則不會設置context
// 驗證成功時異步更新session活動時間, service層有節流視窗控制DB寫入量
func AuthPayloadMiddleware(authService service.IAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := checkAuthPayload(authService, r)
			if ok {
				go func() {
					touchCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					authService.TouchSession(touchCtx, payload.SessionID)
				}()

				ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, payload)
				next.ServeHTTP(w, r.WithContext(ctx))
			} else {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func checkAuthPayload(authService service.IAuthService, r *http.Request) (*token.AccessPayload, bool) {
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		return nil, false
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != string(constants.AuthorizationTypeBearer) {
		return nil, false
	}

	accessToken := fields[1]
	payload, err := authService.VerifyAccessToken(r.Context(), accessToken)
	if err != nil {
		return nil, false
	}

	return payload, true
}
