package constants

import "time"

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey     ContextKey = "authorization"
	AuthorizationTypeBearer    ContextKey = "bearer"
	AuthorizationPayloadKey    ContextKey = "authorization_payload"
	AuthorizationUserAgentKey  ContextKey = "user_agent"
	AuthorizationIPKey         ContextKey = "ip_address"
	AuthorizationDeviceNameKey ContextKey = "device_name"
	AuthorizationDeviceTypeKey ContextKey = "device_type"
)

const (
	//access token 短效, 每個請求都會驗證
	AccessTokenDuration = 15 * time.Minute
	//refresh token 依rememberMe決定效期
	RefreshTokenDuration           = 7 * 24 * time.Hour
	RefreshTokenRememberMeDuration = 30 * 24 * time.Hour
	//session過期後保留時間, 供審計回查
	SessionRetentionDuration = 7 * 24 * time.Hour
	//session清理週期
	SessionSweepInterval = time.Hour
	//redis操作逾時, 位於請求熱路徑上
	FastStoreTimeout = 300 * time.Millisecond
	//登入失敗rate limit
	LoginRateLimitMax    = 10
	LoginRateLimitWindow = 15 * time.Minute
	//user查詢讀穿快取效期
	UserCacheDuration = 30 * time.Second
	//session活動時間寫入節流視窗, 視窗內同一session只落一次DB寫入
	SessionTouchInterval = time.Minute
)

// redis key 前綴, cache層會再加上模組前綴
const (
	RefreshFamilyKeyPrefix = "refresh_family"
	TokenVersionKeyPrefix  = "token_version"
	BlacklistKeyPrefix     = "blacklist"
	LoginLimitKeyPrefix    = "login_limit"
	UserCacheKeyPrefix     = "user_cache"
	SessionTouchKeyPrefix  = "session_touch"
)

type UserStatus string

const (
	UserStatusActive              UserStatus = "active"
	UserStatusSuspended           UserStatus = "suspended"
	UserStatusPendingVerification UserStatus = "pending_verification"
	UserStatusDeleted             UserStatus = "deleted"
)

type DeviceType string

const (
	DeviceTypeMobile  DeviceType = "mobile"
	DeviceTypeTablet  DeviceType = "tablet"
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeUnknown DeviceType = "unknown"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)
