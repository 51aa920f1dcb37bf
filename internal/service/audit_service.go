package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	db "github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db/sqlc"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IAuditService interface {
	// RecordLoginAttempt 寫入登入審計記錄
	// email未解析到用戶時user_id為空
	RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttemptModel) error
}

// AuditService 登入審計記錄
type AuditService struct {
	dbDao db.IStore
}

func NewAuditService(dbDao db.IStore) IAuditService {
	if dbDao == nil {
		panic("NewAuditService: nil dependency")
	}
	return &AuditService{
		dbDao: dbDao,
	}
}

func (a *AuditService) RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttemptModel) error {
	var userID pgtype.UUID
	if attempt.UserID != nil {
		userID = util.UUIDToPgUUIDV5(*attempt.UserID)
	}

	createdAt := attempt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := a.dbDao.CreateLoginAttempt(ctx, sqlc.CreateLoginAttemptParams{
		ID:            util.UUIDToPgUUIDV5(uuid.New()),
		UserID:        userID,
		Email:         attempt.Email,
		IpAddress:     attempt.IPAddress,
		UserAgent:     attempt.UserAgent,
		DeviceType:    attempt.DeviceType,
		Success:       attempt.Success,
		FailureReason: util.StringToPgTextV5(attempt.FailureReason),
		CreatedAt:     createdAt,
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}
