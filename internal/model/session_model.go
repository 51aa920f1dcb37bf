package model

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

type UserSession struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	FamilyID         uuid.UUID //refresh token family, 1:1對應session
	AccessTokenHash  string    //sha256, 不落地明文token
	RefreshTokenHash string
	IPAddress        netip.Addr
	UserAgent        *string
	DeviceType       string
	DeviceName       *string
	IsActive         bool
	IsCurrent        bool //查詢時依呼叫端session id標記, 不入庫
	LastActivityAt   time.Time
	CreatedAt        time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
}
