package model

import (
	"time"

	"github.com/google/uuid"
)

type AuthEventType string

const (
	EventUserRegistered      AuthEventType = "user.registered"
	EventUserLogin           AuthEventType = "user.login"
	EventUserLogout          AuthEventType = "user.logout"
	EventSessionRevoked      AuthEventType = "auth.session_revoked"
	EventTokenReuseDetected  AuthEventType = "auth.token_reuse"
	EventUserPasswordChanged AuthEventType = "user.password_changed"
)

// AuthEventModel 發佈到event bus的auth事件
// fire-and-forget, 發佈失敗不影響主流程
type AuthEventModel struct {
	EventID    uuid.UUID         `json:"event_id"`
	EventType  AuthEventType     `json:"event_type"`
	UserID     uuid.UUID         `json:"user_id"`
	SessionID  uuid.UUID         `json:"session_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
