package middleware

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
)

func DeviceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 獲取 User-Agent
		userAgent := r.Header.Get("User-Agent")

		ipAddress := r.RemoteAddr

		//由user-agent推斷, 僅作為session展示資訊, 不參與授權判斷
		deviceType := util.InferDeviceType(userAgent)
		deviceName := util.InferDeviceName(userAgent)

		// 將資訊存儲到請求上下文
		ctx := context.WithValue(r.Context(), constants.AuthorizationUserAgentKey, userAgent)
		ctx = context.WithValue(ctx, constants.AuthorizationIPKey, ipAddress)
		ctx = context.WithValue(ctx, constants.AuthorizationDeviceTypeKey, string(deviceType))
		ctx = context.WithValue(ctx, constants.AuthorizationDeviceNameKey, deviceName)

		// 使用更新後的上下文繼續請求
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
