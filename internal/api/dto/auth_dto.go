package dto

import (
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/model"
)

type RegisterDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"` //密碼明文, 僅在傳輸中存在
	Name     string `json:"name"`
}

type LoginDTO struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"` //延長refresh token效期至30天
}

type GoogleLoginDTO struct {
	IdToken    string `json:"id_token"`
	RememberMe bool   `json:"remember_me"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutDTO struct {
	AllDevices bool `json:"all_devices"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type IntrospectDTO struct {
	Token string `json:"token"`
}

// TokenInfo 表示令牌資訊
type TokenInfo struct {
	Value     string    `json:"value"`
	ExpiresIn int       `json:"expires_in"` //剩餘秒數
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPairResponse refresh rotation的回應
type TokenPairResponse struct {
	AccessToken  TokenInfo `json:"access_token"`
	RefreshToken TokenInfo `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
}

// UserDTO 表示用戶資訊
type UserDTO struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	GoogleID      *string    `json:"google_id,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LoginResponse 表示登入響應的完整結構
type LoginResponse struct {
	AccessToken  TokenInfo `json:"access_token"`
	RefreshToken TokenInfo `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	User         UserDTO   `json:"user"`
	SessionID    string    `json:"session_id"`
}

// SessionDTO 單一裝置session, is_current標記呼叫端自己的session
type SessionDTO struct {
	ID             string    `json:"id"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      *string   `json:"user_agent,omitempty"`
	DeviceType     string    `json:"device_type"`
	DeviceName     *string   `json:"device_name,omitempty"`
	IsCurrent      bool      `json:"is_current"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// IntrospectionResponse gateway introspect端點回應
type IntrospectionResponse struct {
	Active bool           `json:"active"`
	Claims map[string]any `json:"claims,omitempty"`
}

func NewUserDTO(u *model.UserModel) UserDTO {
	return UserDTO{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Status:        string(u.Status),
		EmailVerified: u.EmailVerified,
		GoogleID:      u.GoogleID,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

func NewTokenPairResponse(p *model.TokenPairModel) TokenPairResponse {
	return TokenPairResponse{
		AccessToken: TokenInfo{
			Value:     p.AccessToken,
			ExpiresIn: p.AccessExpiresIn,
			ExpiresAt: p.AccessExpiresAt,
		},
		RefreshToken: TokenInfo{
			Value:     p.RefreshToken,
			ExpiresIn: int(time.Until(p.RefreshExpiresAt).Seconds()),
			ExpiresAt: p.RefreshExpiresAt,
		},
		TokenType: "Bearer",
	}
}

func NewLoginResponse(r *model.AuthResultModel) LoginResponse {
	pair := NewTokenPairResponse(&r.TokenPair)
	return LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		User:         NewUserDTO(&r.User),
		SessionID:    r.Session.ID.String(),
	}
}

func NewSessionDTO(s *model.UserSession) SessionDTO {
	return SessionDTO{
		ID:             s.ID.String(),
		IPAddress:      s.IPAddress.String(),
		UserAgent:      s.UserAgent,
		DeviceType:     s.DeviceType,
		DeviceName:     s.DeviceName,
		IsCurrent:      s.IsCurrent,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	}
}
