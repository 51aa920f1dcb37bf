package util

import (
	"context"
	"net"
	"net/netip"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
)

type DeviceInfo struct {
	UserAgent  string     // 使用者代理字符串
	IPAddress  netip.Addr // IP地址
	DeviceName string     // 設備名稱
	DeviceType string     // 設備類型, 由user-agent推斷, 僅供展示不做授權判斷
}

// GetDeviceInfoFromContext 從請求上下文中獲取設備相關資訊
//
// 參數:
//   - ctx: 包含設備資訊的上下文
//
// 返回值:
//   - DeviceInfo: 包含了所有設備相關資訊的結構體
//
// 錯誤:
//   - 該函數不返回錯誤，若資訊不存在或IP地址解析失敗則相應字段為空值
func GetDeviceInfoFromContext(ctx context.Context) DeviceInfo {
	var info DeviceInfo

	if ua := ctx.Value(constants.AuthorizationUserAgentKey); ua != nil {
		info.UserAgent = ua.(string)
	}

	if ip := ctx.Value(constants.AuthorizationIPKey); ip != nil {
		ipStr := ip.(string)
		// 移除端口部分（如果有）
		if host, _, err := net.SplitHostPort(ipStr); err == nil {
			ipStr = host
		}
		// 嘗試解析IP地址
		if addr, err := netip.ParseAddr(ipStr); err == nil {
			info.IPAddress = addr
		}
	}

	if dn := ctx.Value(constants.AuthorizationDeviceNameKey); dn != nil {
		info.DeviceName = dn.(string)
	}

	if dt := ctx.Value(constants.AuthorizationDeviceTypeKey); dt != nil {
		info.DeviceType = dt.(string)
	}

	return info
}

// GetTokenPayloadFromContext 取得middleware解析好的access token payload, 不存在回傳nil
func GetTokenPayloadFromContext(ctx context.Context) *token.AccessPayload {
	var tokenPayload *token.AccessPayload

	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		tokenPayload = v.(*token.AccessPayload)
	}

	return tokenPayload
}
