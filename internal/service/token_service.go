package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrTokenBlacklisted access token已被登出撤銷
	ErrTokenBlacklisted = errors.New("token is blacklisted")
	// ErrVersionInvalidated token攜帶的版本號已被全域失效
	ErrVersionInvalidated = errors.New("token version has been invalidated")
	// ErrReuseDetected refresh token與family pointer不符, 視為重放
	ErrReuseDetected = errors.New("refresh token reuse detected")
)

type ITokenService interface {
	// IssueTokenPair 為新session簽發access/refresh token pair
	// 會建立全新的token family並寫入family pointer
	//
	// 參數:
	//   - ctx: 上下文
	//   - user: 目標用戶
	//   - sessionID: 所屬session ID
	//   - permissions: 依角色展開的權限清單, 會內嵌至access token
	//   - rememberMe: 是否延長refresh token效期
	//
	// 返回值:
	//   - *model.TokenPairModel: 簽發結果, AccessExpiresIn單位為秒
	//   - error: 可能發生的錯誤
	//
	// 錯誤:
	//   - 內部錯誤 500: 簽章失敗或family pointer寫入失敗
	IssueTokenPair(ctx context.Context, user *model.UserModel, sessionID uuid.UUID, permissions []string, rememberMe bool) (*model.TokenPairModel, error)
	// RotateTokenPair 以CAS輪換family pointer並簽發新的token pair
	// 兩個並發請求帶同一個refresh token時, 恰好一個成功,
	// 失敗的一方視為重放, 會立即bump用戶token version使全家族失效
	//
	// 參數:
	//   - ctx: 上下文
	//   - user: 目標用戶
	//   - session: 所屬session, 新refresh token效期對齊session到期時間
	//   - permissions: 權限清單
	//   - presented: 呼叫端出示的refresh token payload
	//
	// 返回值:
	//   - *model.TokenPairModel: 新的token pair, family ID不變
	//   - error: 可能發生的錯誤
	//
	// 錯誤:
	//   - ErrReuseDetected: pointer不符或已不存在
	//   - 未驗證 401: session已過期
	//   - 內部錯誤 500: fast store無法判定時不輪換 (fail closed)
	RotateTokenPair(ctx context.Context, user *model.UserModel, session *model.UserSession, permissions []string, presented *token.RefreshPayload) (*model.TokenPairModel, error)
	// VerifyAccessToken 驗證access token簽章後, 再檢查黑名單與token version
	//
	// 錯誤:
	//   - token.ErrExpiredToken / token.ErrInvalidToken: 簽章層錯誤
	//   - ErrTokenBlacklisted: 已被單session登出
	//   - ErrVersionInvalidated: 已被全域登出
	//   - 內部錯誤 500: fast store無法判定時拒絕 (fail closed)
	VerifyAccessToken(ctx context.Context, tokenStr string) (*token.AccessPayload, error)
	// VerifyRefreshToken 僅驗證refresh token簽章與種類
	// family pointer與session狀態由輪換流程檢查
	VerifyRefreshToken(tokenStr string) (*token.RefreshPayload, error)
	// BlacklistAccessToken 將access token加入黑名單
	// TTL取token剩餘效期, 已過期的token不寫入
	BlacklistAccessToken(ctx context.Context, payload *token.AccessPayload) error
	// InvalidateAllForUser 遞增用戶token version
	// 所有既存access token因版本落後而立即失效
	InvalidateAllForUser(ctx context.Context, userID uuid.UUID) error
	// RemoveFamilyPointer 清除指定family的pointer, 使對應refresh token無法再輪換
	RemoveFamilyPointer(ctx context.Context, userID, familyID uuid.UUID) error
	// Introspect 檢視access token狀態
	// 任何驗證失敗都回傳active=false, 不透露失敗原因
	Introspect(ctx context.Context, tokenStr string) (*model.IntrospectionModel, error)
}

// TokenService token簽發與生命週期管理
// 只依賴fast store, 不碰關聯式資料庫
type TokenService struct {
	maker token.Maker
	cache cache.Cache
}

func NewTokenService(maker token.Maker, cache cache.Cache) ITokenService {
	if maker == nil || cache == nil {
		panic("NewTokenService: nil dependency")
	}
	return &TokenService{
		maker: maker,
		cache: cache,
	}
}

func refreshFamilyKey(userID, familyID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", constants.RefreshFamilyKeyPrefix, userID, familyID)
}

func tokenVersionKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", constants.TokenVersionKeyPrefix, userID)
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("%s:%s", constants.BlacklistKeyPrefix, jti)
}

// fastCtx fast store操作一律帶短timeout, 避免redis抖動拖垮請求
func fastCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.FastStoreTimeout)
}

func (s *TokenService) IssueTokenPair(ctx context.Context, user *model.UserModel, sessionID uuid.UUID, permissions []string, rememberMe bool) (*model.TokenPairModel, error) {
	refreshDuration := constants.RefreshTokenDuration
	if rememberMe {
		refreshDuration = constants.RefreshTokenRememberMeDuration
	}

	version, err := s.currentVersion(ctx, user.ID)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	familyID := uuid.New()
	refreshToken, refreshPayload, err := s.maker.CreateRefreshToken(user.ID, sessionID, familyID, refreshDuration)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	accessToken, accessPayload, err := s.maker.CreateAccessToken(token.CreateAccessTokenParams{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TenantID:     user.TenantID,
		SessionID:    sessionID,
		Permissions:  permissions,
		TokenVersion: version,
	}, constants.AccessTokenDuration)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	// pointer寫入失敗則整次簽發失敗, 不發出無法輪換的refresh token
	fctx, cancel := fastCtx(ctx)
	defer cancel()
	if err := s.cache.Set(fctx, refreshFamilyKey(user.ID, familyID), refreshPayload.ID, refreshDuration); err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	return &model.TokenPairModel{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessPayload.ExpiresAt.Time,
		RefreshExpiresAt: refreshPayload.ExpiresAt.Time,
		AccessExpiresIn:  int(constants.AccessTokenDuration.Seconds()),
		FamilyID:         familyID,
	}, nil
}

func (s *TokenService) RotateTokenPair(ctx context.Context, user *model.UserModel, session *model.UserSession, permissions []string, presented *token.RefreshPayload) (*model.TokenPairModel, error) {
	// 新refresh token效期對齊session到期時間, 輪換不會延長session壽命
	refreshDuration := time.Until(session.ExpiresAt)
	if refreshDuration <= 0 {
		return nil, er.New(er.UnauthenticatedCode, "session has expired")
	}

	newRefreshToken, newRefreshPayload, err := s.maker.CreateRefreshToken(user.ID, session.ID, presented.FamilyID, refreshDuration)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	fctx, cancel := fastCtx(ctx)
	defer cancel()

	swapped, err := s.cache.CompareAndSwap(fctx, refreshFamilyKey(user.ID, presented.FamilyID), presented.ID, newRefreshPayload.ID, refreshDuration)
	if err != nil {
		// fail closed: 無法判定pointer時寧可拒絕, 不發新token
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	if !swapped {
		// pointer不符或不存在, 視為舊token重放
		// 整個family就地失效: pointer刪除讓最新的refresh也無法再輪換,
		// version bump讓同帳號所有access token失效
		if delErr := s.cache.Delete(fctx, refreshFamilyKey(user.ID, presented.FamilyID)); delErr != nil {
			return nil, er.New(er.InternalErrorCode, delErr.Error())
		}
		if _, incrErr := s.cache.Incr(fctx, tokenVersionKey(user.ID)); incrErr != nil {
			return nil, er.New(er.InternalErrorCode, incrErr.Error())
		}
		return nil, ErrReuseDetected
	}

	version, err := s.currentVersion(ctx, user.ID)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	accessToken, accessPayload, err := s.maker.CreateAccessToken(token.CreateAccessTokenParams{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TenantID:     user.TenantID,
		SessionID:    session.ID,
		Permissions:  permissions,
		TokenVersion: version,
	}, constants.AccessTokenDuration)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}

	return &model.TokenPairModel{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		AccessExpiresAt:  accessPayload.ExpiresAt.Time,
		RefreshExpiresAt: newRefreshPayload.ExpiresAt.Time,
		AccessExpiresIn:  int(constants.AccessTokenDuration.Seconds()),
		FamilyID:         presented.FamilyID,
	}, nil
}

func (s *TokenService) VerifyAccessToken(ctx context.Context, tokenStr string) (*token.AccessPayload, error) {
	payload, err := s.maker.VerifyAccessToken(tokenStr)
	if err != nil {
		return nil, err
	}

	fctx, cancel := fastCtx(ctx)
	defer cancel()

	blacklisted, err := s.cache.Exists(fctx, blacklistKey(payload.ID))
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	version, err := s.currentVersion(ctx, payload.UserID())
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	if payload.TokenVersion < version {
		return nil, ErrVersionInvalidated
	}

	return payload, nil
}

func (s *TokenService) VerifyRefreshToken(tokenStr string) (*token.RefreshPayload, error) {
	return s.maker.VerifyRefreshToken(tokenStr)
}

func (s *TokenService) BlacklistAccessToken(ctx context.Context, payload *token.AccessPayload) error {
	// TTL取剩餘效期, 黑名單條目不會比token本身活得久
	ttl := time.Until(payload.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	fctx, cancel := fastCtx(ctx)
	defer cancel()
	if err := s.cache.Set(fctx, blacklistKey(payload.ID), "1", ttl); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *TokenService) InvalidateAllForUser(ctx context.Context, userID uuid.UUID) error {
	fctx, cancel := fastCtx(ctx)
	defer cancel()
	if _, err := s.cache.Incr(fctx, tokenVersionKey(userID)); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *TokenService) RemoveFamilyPointer(ctx context.Context, userID, familyID uuid.UUID) error {
	fctx, cancel := fastCtx(ctx)
	defer cancel()
	if err := s.cache.Delete(fctx, refreshFamilyKey(userID, familyID)); err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	return nil
}

func (s *TokenService) Introspect(ctx context.Context, tokenStr string) (*model.IntrospectionModel, error) {
	payload, err := s.VerifyAccessToken(ctx, tokenStr)
	if err != nil {
		// 不區分失敗原因, 一律回報inactive
		return &model.IntrospectionModel{Active: false}, nil
	}

	return &model.IntrospectionModel{
		Active: true,
		Claims: map[string]any{
			"jti":           payload.ID,
			"sub":           payload.Subject,
			"email":         payload.Email,
			"role":          payload.Role,
			"tenant_id":     payload.TenantID,
			"session_id":    payload.SessionID.String(),
			"permissions":   payload.Permissions,
			"token_version": payload.TokenVersion,
			"token_type":    payload.TokenType,
			"iat":           payload.IssuedAt.Unix(),
			"exp":           payload.ExpiresAt.Unix(),
		},
	}, nil
}

// currentVersion 讀取用戶目前的token version, key不存在視為0
func (s *TokenService) currentVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	fctx, cancel := fastCtx(ctx)
	defer cancel()

	val, err := s.cache.Get(fctx, tokenVersionKey(userID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	version, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return version, nil
}
