package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("token is invalid")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("token type mismatch")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessPayload access token claims
// Permissions為簽發當下role permission的快照, TokenVersion用於全域失效
type AccessPayload struct {
	jwt.RegisteredClaims
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TenantID     string    `json:"tenant_id"`
	SessionID    uuid.UUID `json:"session_id"`
	Permissions  []string  `json:"permissions"`
	TokenVersion int64     `json:"token_version"`
	TokenType    string    `json:"token_type"`
}

// UserID 解析Subject為uuid, 解析失敗回傳uuid.Nil
func (p *AccessPayload) UserID() uuid.UUID {
	id, err := uuid.Parse(p.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// RefreshPayload refresh token claims
// FamilyID為rotation reuse偵測用的隨機識別, 每次rotation換新
type RefreshPayload struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"session_id"`
	FamilyID  uuid.UUID `json:"family_id"`
	TokenType string    `json:"token_type"`
}

func (p *RefreshPayload) UserID() uuid.UUID {
	id, err := uuid.Parse(p.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
