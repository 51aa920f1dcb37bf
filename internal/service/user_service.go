package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
	db "github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/db/sqlc"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type IUserService interface {
	// CreateUser 建立本地帳號
	// 密碼需通過強度檢查, 新帳號狀態依autoActivate設定為active或pending_verification
	//
	// 可能的錯誤:
	//   - 無效參數 460: 密碼強度不足
	//   - 無效操作 405: email已存在
	//   - 數據庫操作錯誤 500
	CreateUser(ctx context.Context, arg *model.CreateUserModel) (*model.UserModel, error)
	// GetUserByID 根據ID取得用戶
	//
	// 可能的錯誤:
	//   - 用戶不存在 470
	//   - 數據庫操作錯誤 500
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error)
	// GetUserByEmail 根據email取得用戶
	// 帶讀穿快取, 快取失效時直接讀庫, 不因快取中斷而失敗
	//
	// 可能的錯誤:
	//   - 用戶不存在 470
	//   - 數據庫操作錯誤 500
	GetUserByEmail(ctx context.Context, email string) (*model.UserModel, error)
	// AutoActivateEnabled 回報pending帳號是否在密碼登入成功時自動轉active
	AutoActivateEnabled() bool
	// ActivateUser 將帳號狀態轉為active
	//
	// 可能的錯誤:
	//   - 數據庫操作錯誤 500
	ActivateUser(ctx context.Context, user *model.UserModel) error
	// GetOrCreateSocialUser 社群登入的用戶解析
	// email已存在時補綁identity provider ID, pending帳號視同已驗證直接轉active;
	// 不存在時建立無密碼帳號
	//
	// 可能的錯誤:
	//   - 數據庫操作錯誤 500
	GetOrCreateSocialUser(ctx context.Context, arg *model.SocialLoginModel) (*model.UserModel, error)
	// UpdatePassword 更新用戶密碼
	//
	// 可能的錯誤:
	//   - 無效參數 460: 密碼強度不足
	//   - 用戶不存在 470
	//   - 數據庫操作錯誤 500
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
	// UpdateLastLogin 記錄最後登入時間
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

// UserService 用戶帳號服務
type UserService struct {
	dbDao        db.IStore
	cache        cache.Cache
	tenantID     string
	bcryptCost   int
	autoActivate bool
}

func NewUserService(dbDao db.IStore, cache cache.Cache, tenantID string, bcryptCost int, autoActivate bool) IUserService {
	if dbDao == nil || cache == nil {
		panic("NewUserService: nil dependency")
	}
	return &UserService{
		dbDao:        dbDao,
		cache:        cache,
		tenantID:     tenantID,
		bcryptCost:   bcryptCost,
		autoActivate: autoActivate,
	}
}

func userCacheKey(email string) string {
	return fmt.Sprintf("%s:email:%s", constants.UserCacheKeyPrefix, email)
}

func (u *UserService) CreateUser(ctx context.Context, arg *model.CreateUserModel) (*model.UserModel, error) {
	if err := util.ValidateStringPassword(arg.Password); err != nil {
		return nil, er.New(er.InvalidArgumentCode, err.Error())
	}

	// 檢查email是否已存在
	_, err := u.dbDao.GetUserByEmail(ctx, arg.Email)
	if err == nil {
		return nil, er.New(er.InvalidOperationCode, "email already exists")
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	hashed, err := util.HashPassword(arg.Password, u.bcryptCost)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	status := constants.UserStatusPendingVerification
	if u.autoActivate {
		status = constants.UserStatusActive
	}

	var name *string
	if arg.Name != "" {
		name = &arg.Name
	}

	userEntity, err := u.dbDao.CreateUser(ctx, sqlc.CreateUserParams{
		ID:           util.UUIDToPgUUIDV5(uuid.New()),
		TenantID:     u.tenantID,
		Email:        arg.Email,
		PasswordHash: util.StringToPgTextV5(&hashed),
		Role:         "user",
		Status:       string(status),
		Name:         util.StringToPgTextV5(name),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	return userFromRow(&userEntity), nil
}

func (u *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	userEntity, err := u.dbDao.GetUserByID(ctx, util.UUIDToPgUUIDV5(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, er.New(er.UserNotFoundCode, "user not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	return userFromRow(&userEntity), nil
}

func (u *UserService) GetUserByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	if cached := u.readUserCache(ctx, email); cached != nil {
		return cached, nil
	}

	userEntity, err := u.dbDao.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, er.New(er.UserNotFoundCode, "user not found")
		}
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	user := userFromRow(&userEntity)
	u.writeUserCache(ctx, user)
	return user, nil
}

func (u *UserService) AutoActivateEnabled() bool {
	return u.autoActivate
}

func (u *UserService) ActivateUser(ctx context.Context, user *model.UserModel) error {
	err := u.dbDao.UpdateUserStatus(ctx, sqlc.UpdateUserStatusParams{
		ID:            util.UUIDToPgUUIDV5(user.ID),
		Status:        string(constants.UserStatusActive),
		EmailVerified: user.EmailVerified,
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	u.invalidateUserCache(ctx, user.Email)
	return nil
}

func (u *UserService) GetOrCreateSocialUser(ctx context.Context, arg *model.SocialLoginModel) (*model.UserModel, error) {
	userEntity, err := u.dbDao.GetUserByEmail(ctx, arg.Email)
	if err == nil {
		return u.linkSocialUser(ctx, &userEntity, arg)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	// identity provider已驗證身分, 新帳號直接啟用且無本地密碼
	var name *string
	if arg.Name != "" {
		name = &arg.Name
	}
	created, err := u.dbDao.CreateUser(ctx, sqlc.CreateUserParams{
		ID:            util.UUIDToPgUUIDV5(uuid.New()),
		TenantID:      u.tenantID,
		Email:         arg.Email,
		Role:          "user",
		Status:        string(constants.UserStatusActive),
		EmailVerified: arg.EmailVerified,
		Name:          util.StringToPgTextV5(name),
		GoogleID:      util.StringToPgTextV5(&arg.GoogleID),
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	return userFromRow(&created), nil
}

// linkSocialUser 對既有帳號補綁social identity
func (u *UserService) linkSocialUser(ctx context.Context, userEntity *sqlc.User, arg *model.SocialLoginModel) (*model.UserModel, error) {
	user := userFromRow(userEntity)

	if user.GoogleID == nil {
		err := u.dbDao.UpdateUserGoogleID(ctx, sqlc.UpdateUserGoogleIDParams{
			ID:            userEntity.ID,
			GoogleID:      util.StringToPgTextV5(&arg.GoogleID),
			EmailVerified: arg.EmailVerified,
		})
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
		user.GoogleID = &arg.GoogleID
		user.EmailVerified = arg.EmailVerified
	}

	// provider已驗證email, pending帳號視同完成驗證
	if user.Status == constants.UserStatusPendingVerification && arg.EmailVerified {
		err := u.dbDao.UpdateUserStatus(ctx, sqlc.UpdateUserStatusParams{
			ID:            userEntity.ID,
			Status:        string(constants.UserStatusActive),
			EmailVerified: true,
		})
		if err != nil {
			return nil, er.New(er.InternalErrorCode, err.Error())
		}
		user.Status = constants.UserStatusActive
		user.EmailVerified = true
	}

	u.invalidateUserCache(ctx, user.Email)
	return user, nil
}

func (u *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if err := util.ValidateStringPassword(newPassword); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}

	user, err := u.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	hashed, err := util.HashPassword(newPassword, u.bcryptCost)
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}

	err = u.dbDao.UpdateUserPassword(ctx, sqlc.UpdateUserPasswordParams{
		ID:           util.UUIDToPgUUIDV5(userID),
		PasswordHash: util.StringToPgTextV5(&hashed),
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}

	u.invalidateUserCache(ctx, user.Email)
	return nil
}

func (u *UserService) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	err := u.dbDao.UpdateUserLastLogin(ctx, sqlc.UpdateUserLastLoginParams{
		ID:          util.UUIDToPgUUIDV5(userID),
		LastLoginAt: util.TimeToPgTimestamptzV5(&now),
	})
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

// readUserCache 讀取快取, 任何快取錯誤都視為miss
func (u *UserService) readUserCache(ctx context.Context, email string) *model.UserModel {
	fctx, cancel := fastCtx(ctx)
	defer cancel()

	val, err := u.cache.Get(fctx, userCacheKey(email))
	if err != nil {
		return nil
	}

	var user model.UserModel
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil
	}
	return &user
}

func (u *UserService) writeUserCache(ctx context.Context, user *model.UserModel) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}

	fctx, cancel := fastCtx(ctx)
	defer cancel()
	//寫入失敗不影響主流程
	_ = u.cache.Set(fctx, userCacheKey(user.Email), string(data), constants.UserCacheDuration)
}

func (u *UserService) invalidateUserCache(ctx context.Context, email string) {
	fctx, cancel := fastCtx(ctx)
	defer cancel()
	_ = u.cache.Delete(fctx, userCacheKey(email))
}

// userFromRow 將資料庫row轉換為模型
func userFromRow(row *sqlc.User) *model.UserModel {
	return &model.UserModel{
		ID:            util.PgUUIDToUUIDV5(row.ID),
		TenantID:      row.TenantID,
		Email:         row.Email,
		HashPassword:  util.PgTextToStringV5(row.PasswordHash),
		Role:          row.Role,
		Status:        constants.UserStatus(row.Status),
		EmailVerified: row.EmailVerified,
		Name:          util.PgTextToStringV5(row.Name),
		GoogleID:      util.PgTextToStringV5(row.GoogleID),
		LastLoginAt:   util.PgTimestamptzToTimeV5(row.LastLoginAt),
		CreatedAt:     row.CreatedAt,
	}
}
