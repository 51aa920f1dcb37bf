package util

import (
	"strings"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
)

// InferDeviceType 從user-agent推斷設備類型
// 純粹是字串啟發式, 僅供session列表顯示, 不可作為授權依據
func InferDeviceType(userAgent string) constants.DeviceType {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return constants.DeviceTypeUnknown
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return constants.DeviceTypeTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return constants.DeviceTypeMobile
	default:
		return constants.DeviceTypeDesktop
	}
}

// InferDeviceName 取user-agent中的產品識別作為設備名稱
func InferDeviceName(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "macintosh"):
		return "Mac"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		if i := strings.IndexAny(userAgent, " /"); i > 0 {
			return userAgent[:i]
		}
		return userAgent
	}
}
