package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenPairModel 一次簽發的access/refresh組合
type TokenPairModel struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	//access token剩餘秒數, 回應給前端
	AccessExpiresIn int
	FamilyID        uuid.UUID
}

// AuthResultModel register/login/social login的完整回應
type AuthResultModel struct {
	User      UserModel
	TokenPair TokenPairModel
	Session   UserSession
}

type LoginModel struct {
	Email      string
	Password   string
	RememberMe bool
}

// IntrospectionModel gateway introspect回應, 不夾帶錯誤
type IntrospectionModel struct {
	Active bool
	Claims map[string]any
}

type LoginAttemptModel struct {
	ID            uuid.UUID
	UserID        *uuid.UUID //email未解析到user時為nil
	Email         string
	IPAddress     string
	UserAgent     string
	DeviceType    string
	Success       bool
	FailureReason *string
	CreatedAt     time.Time
}
