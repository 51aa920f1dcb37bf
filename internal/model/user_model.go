package model

import (
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/google/uuid"
)

type UserModel struct {
	ID            uuid.UUID
	TenantID      string
	Email         string
	HashPassword  *string //identity provider建立的帳號沒有密碼
	Role          string
	Status        constants.UserStatus
	EmailVerified bool
	Name          *string
	GoogleID      *string
	LastLoginAt   *time.Time
	CreatedAt     time.Time
}

// IsActive user是否可登入
func (u *UserModel) IsActive() bool {
	return u.Status == constants.UserStatusActive
}

type CreateUserModel struct {
	Email    string
	Password string
	Name     string
}

type SocialLoginModel struct {
	Email         string
	GoogleID      string
	Name          string
	EmailVerified bool
}

type ChangePasswordModel struct {
	UserID           uuid.UUID
	CurrentPassword  string
	NewPassword      string
	CurrentSessionID uuid.UUID
}
