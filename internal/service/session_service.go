package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	db "github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db/sqlc"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ISessionService interface {
	// CreateSession 創建新的會話記錄
	//
	// 參數:
	//   - ctx: 上下文，包含請求相關資訊
	//   - session: 包含會話資訊的模型, token欄位存hash而非明文
	//
	// 返回值:
	//   - *model.UserSession: 創建成功後的會話模型
	//   - error: 可能發生的錯誤
	//
	// 錯誤:
	//   - 數據庫錯誤 500: 在創建會話過程中可能發生的數據庫錯誤
	CreateSession(ctx context.Context, session *model.UserSession) (*model.UserSession, error)
	// GetSessionByID 根據會話ID獲取會話
	//
	// 可能的錯誤:
	//   - 數據不存在 462
	//   - 數據庫操作錯誤 500
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*model.UserSession, error)
	// ListActiveByUser 列出用戶所有活躍會話
	// 依最後活動時間由新到舊排序, 與currentSessionID相符的會話標記IsCurrent
	//
	// 可能的錯誤:
	//   - 數據庫操作錯誤 500
	ListActiveByUser(ctx context.Context, userID, currentSessionID uuid.UUID) ([]model.UserSession, error)
	// UpdateActivity 更新會話最後活動時間
	UpdateActivity(ctx context.Context, sessionID uuid.UUID) error
	// UpdateSessionTokens 輪換後更新會話綁定的token hash
	//
	// 可能的錯誤:
	//   - 數據不存在 462
	//   - 數據庫操作錯誤 500
	UpdateSessionTokens(ctx context.Context, sessionID uuid.UUID, accessTokenHash, refreshTokenHash string) (*model.UserSession, error)
	// RevokeSession 撤銷指定會話
	// 條件包含userID, 非本人的會話與不存在的會話回同一個錯誤,
	// 避免洩漏會話ID是否存在
	//
	// 可能的錯誤:
	//   - 不存在或無權限 404
	//   - 數據庫操作錯誤 500
	RevokeSession(ctx context.Context, sessionID, userID uuid.UUID) error
	// RevokeAllSessions 撤銷用戶所有活躍會話
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
	// RevokeOtherSessions 撤銷除currentSessionID以外的所有活躍會話
	RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error
	// DeleteExpiredSessions 刪除過期與已撤銷超過保留期的會話
	// 由背景排程呼叫, 回傳刪除筆數
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// SessionService 實現會話服務
type SessionService struct {
	dbDao db.IStore
}

// NewSessionService 創建新的會話服務實例
func NewSessionService(dbDao db.IStore) ISessionService {
	if dbDao == nil {
		panic("NewSessionService: nil dependency")
	}
	return &SessionService{
		dbDao: dbDao,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, session *model.UserSession) (*model.UserSession, error) {
	params := sqlc.CreateSessionParams{
		ID:               util.UUIDToPgUUIDV5(session.ID),
		UserID:           util.UUIDToPgUUIDV5(session.UserID),
		FamilyID:         util.UUIDToPgUUIDV5(session.FamilyID),
		AccessTokenHash:  session.AccessTokenHash,
		RefreshTokenHash: session.RefreshTokenHash,
		IpAddress:        session.IPAddress,
		UserAgent:        util.StringToPgTextV5(session.UserAgent),
		DeviceType:       session.DeviceType,
		DeviceName:       util.StringToPgTextV5(session.DeviceName),
		IsActive:         true,
		LastActivityAt:   session.LastActivityAt,
		CreatedAt:        session.CreatedAt,
		ExpiresAt:        session.ExpiresAt,
	}

	repoSession, err := s.dbDao.CreateSession(ctx, params)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	result := sessionFromRow(repoSession)
	return &result, nil
}

func (s *SessionService) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*model.UserSession, error) {
	repoSession, err := s.dbDao.GetSessionByID(ctx, util.UUIDToPgUUIDV5(sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, er.New(er.DataNotExistsCode, "session not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	result := sessionFromRow(repoSession)
	return &result, nil
}

func (s *SessionService) ListActiveByUser(ctx context.Context, userID, currentSessionID uuid.UUID) ([]model.UserSession, error) {
	rows, err := s.dbDao.ListActiveSessionsByUser(ctx, util.UUIDToPgUUIDV5(userID))
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	sessions := make([]model.UserSession, 0, len(rows))
	for _, row := range rows {
		session := sessionFromRow(row)
		session.IsCurrent = session.ID == currentSessionID
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SessionService) UpdateActivity(ctx context.Context, sessionID uuid.UUID) error {
	err := s.dbDao.UpdateSessionActivity(ctx, sqlc.UpdateSessionActivityParams{
		ID:             util.UUIDToPgUUIDV5(sessionID),
		LastActivityAt: time.Now().UTC(),
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *SessionService) UpdateSessionTokens(ctx context.Context, sessionID uuid.UUID, accessTokenHash, refreshTokenHash string) (*model.UserSession, error) {
	repoSession, err := s.dbDao.UpdateSessionTokens(ctx, sqlc.UpdateSessionTokensParams{
		ID:               util.UUIDToPgUUIDV5(sessionID),
		AccessTokenHash:  accessTokenHash,
		RefreshTokenHash: refreshTokenHash,
		LastActivityAt:   time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, er.New(er.DataNotExistsCode, "session not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	result := sessionFromRow(repoSession)
	return &result, nil
}

func (s *SessionService) RevokeSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	affected, err := s.dbDao.RevokeSession(ctx, sqlc.RevokeSessionParams{
		ID:     util.UUIDToPgUUIDV5(sessionID),
		UserID: util.UUIDToPgUUIDV5(userID),
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	if affected == 0 {
		return er.New(er.NotFoundCode, "session not found")
	}
	return nil
}

func (s *SessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.dbDao.RevokeAllSessions(ctx, util.UUIDToPgUUIDV5(userID)); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *SessionService) RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error {
	err := s.dbDao.RevokeOtherSessions(ctx, sqlc.RevokeOtherSessionsParams{
		UserID: util.UUIDToPgUUIDV5(userID),
		ID:     util.UUIDToPgUUIDV5(currentSessionID),
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-constants.SessionRetentionDuration)
	deleted, err := s.dbDao.DeleteExpiredSessions(ctx, sqlc.DeleteExpiredSessionsParams{
		ExpiresAt:      cutoff,
		LastActivityAt: cutoff,
	})
	if err != nil {
		return 0, er.New(er.InternalErrorCode, err.Error())
	}
	return deleted, nil
}

// sessionFromRow 將資料庫row轉換為模型
func sessionFromRow(row sqlc.UserSession) model.UserSession {
	return model.UserSession{
		ID:               util.PgUUIDToUUIDV5(row.ID),
		UserID:           util.PgUUIDToUUIDV5(row.UserID),
		FamilyID:         util.PgUUIDToUUIDV5(row.FamilyID),
		AccessTokenHash:  row.AccessTokenHash,
		RefreshTokenHash: row.RefreshTokenHash,
		IPAddress:        row.IpAddress,
		UserAgent:        util.PgTextToStringV5(row.UserAgent),
		DeviceType:       row.DeviceType,
		DeviceName:       util.PgTextToStringV5(row.DeviceName),
		IsActive:         row.IsActive,
		LastActivityAt:   row.LastActivityAt,
		CreatedAt:        row.CreatedAt,
		ExpiresAt:        row.ExpiresAt,
		RevokedAt:        util.PgTimestamptzToTimeV5(row.RevokedAt),
	}
}
