package token

import (
	"time"

	"github.com/google/uuid"
)

// CreateAccessTokenParams access token簽發參數
type CreateAccessTokenParams struct {
	UserID       uuid.UUID
	Email        string
	Role         string
	TenantID     string
	SessionID    uuid.UUID
	Permissions  []string
	TokenVersion int64
}

type Maker interface {
	// CreateAccessToken 簽發access token
	//
	// 參數:
	//   - arg: 簽發參數, 包含user識別, permission快照與token version
	//   - duration: 有效期間
	//
	// 返回值:
	//   - string: 簽章後的token字串
	//   - *AccessPayload: 簽發的claims
	//   - error: 簽章錯誤
	CreateAccessToken(arg CreateAccessTokenParams, duration time.Duration) (string, *AccessPayload, error)
	// CreateRefreshToken 簽發refresh token, familyID由呼叫端產生並負責寫入store
	CreateRefreshToken(userID, sessionID, familyID uuid.UUID, duration time.Duration) (string, *RefreshPayload, error)
	// VerifyAccessToken 驗證簽章/issuer/audience/效期/型別
	//
	// 錯誤:
	//   - ErrExpiredToken: token已過期
	//   - ErrWrongTokenType: 拿refresh token當access token用
	//   - ErrInvalidToken: 其餘一律視為無效
	VerifyAccessToken(tokenStr string) (*AccessPayload, error)
	// VerifyRefreshToken 驗證簽章/效期/型別, 不做family比對
	VerifyRefreshToken(tokenStr string) (*RefreshPayload, error)
}
