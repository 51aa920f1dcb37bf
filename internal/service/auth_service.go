package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/config"
	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/google_auth"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type IAuthService interface {
	// Register 建立本地帳號並發放首發session
	// 註冊當下已證明憑證所有權, pending狀態只影響之後的密碼登入
	//
	// 錯誤:
	//   - er.InvalidArgumentCode 460: 密碼強度不足
	//   - er.InvalidOperationCode 405: email已存在
	//   - er.InternalErrorCode 500: 內部處理錯誤
	Register(ctx context.Context, arg *model.CreateUserModel) (*model.AuthResultModel, error)
	// Login 密碼登入
	// 帳號不存在與密碼錯誤回同一個401, 不洩漏帳號是否存在
	//
	// 流程說明:
	//  1. 檢查登入失敗rate limit
	//  2. 解析用戶並檢查帳號狀態
	//  3. 驗證密碼, 失敗計入rate limit與審計
	//  4. 單一session policy啟用時先撤銷既存session
	//  5. 建立session並簽發token pair
	//  6. 成功後重置rate limit, 異步寫審計與事件
	//
	// 錯誤:
	//   - er.RateLimitCode 429: 失敗次數超過上限
	//   - er.UnauthenticatedCode 401: 帳號或密碼錯誤
	//   - er.UserDisabledCode 471: 帳號尚未完成驗證
	//   - er.UserSuspendedCode 472: 帳號已停權
	//   - er.InternalErrorCode 500: 內部處理錯誤
	Login(ctx context.Context, arg *model.LoginModel) (*model.AuthResultModel, error)
	// SocialLogin 以identity provider的ID token登入
	// 首次登入自動建立帳號, pending帳號視同完成驗證
	//
	// 錯誤:
	//   - er.UnauthenticatedCode 401: ID token驗證失敗
	//   - er.UserSuspendedCode 472: 帳號已停權
	//   - er.InternalErrorCode 500: 內部處理錯誤
	SocialLogin(ctx context.Context, idToken string, rememberMe bool) (*model.AuthResultModel, error)
	// RefreshToken 輪換refresh token並簽發新的token pair
	// 任何驗證失敗一律回401, 不透露是過期, 重放還是session被撤銷
	//
	// 錯誤:
	//   - er.UnauthenticatedCode 401: token無效, session已撤銷或偵測到重放
	//   - er.InternalErrorCode 500: 內部處理錯誤
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPairModel, error)
	// Logout 登出當前session
	// session已不存在或已撤銷時視為成功 (冪等)
	// allDevices為true時撤銷所有session並全域失效所有access token
	//
	// 錯誤:
	//   - er.InternalErrorCode 500: 內部處理錯誤
	Logout(ctx context.Context, payload *token.AccessPayload, allDevices bool) error
	// ListSessions 列出用戶活躍session, 當前session標記IsCurrent
	ListSessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]model.UserSession, error)
	// RevokeSession 撤銷指定session
	// 先清除family pointer再標記session row, 中途失敗時refresh已不可用
	//
	// 錯誤:
	//   - er.NotFoundCode 404: session不存在或不屬於該用戶
	//   - er.InternalErrorCode 500: 內部處理錯誤
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
	// RevokeOtherSessions 撤銷除當前session外的所有session
	RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error
	// ChangePassword 修改密碼並撤銷其他session
	//
	// 錯誤:
	//   - er.UnauthenticatedCode 401: 當前密碼錯誤
	//   - er.InvalidOperationCode 405: 帳號無本地密碼
	//   - er.InvalidArgumentCode 460: 新密碼強度不足
	//   - er.InternalErrorCode 500: 內部處理錯誤
	ChangePassword(ctx context.Context, arg *model.ChangePasswordModel) error
	// Me 取得當前登入user資訊
	//
	// 錯誤:
	//   - er.UserNotFoundCode 470: 用戶不存在
	Me(ctx context.Context) (*model.UserModel, error)
	// VerifyAccessToken 驗證access token, 供middleware使用
	// 簽章, 黑名單與token version任一檢查失敗都回401
	VerifyAccessToken(ctx context.Context, tokenStr string) (*token.AccessPayload, error)
	// Introspect 檢視access token狀態
	Introspect(ctx context.Context, tokenStr string) (*model.IntrospectionModel, error)
	// TouchSession 更新session最後活動時間, middleware異步呼叫
	TouchSession(ctx context.Context, sessionID uuid.UUID)
}

type AuthService struct {
	userService        IUserService
	sessionService     ISessionService
	tokenService       ITokenService
	rateLimitService   IRateLimitService
	auditService       IAuditService
	publisher          eventbus.IPublisher
	googleAuthVerifier google_auth.IAuthVerifier
	permissions        *config.PermissionConfig
	cache              cache.Cache
	//單一session policy: 登入前撤銷該user所有既存session
	strictSession bool
}

func NewAuthService(
	userService IUserService,
	sessionService ISessionService,
	tokenService ITokenService,
	rateLimitService IRateLimitService,
	auditService IAuditService,
	publisher eventbus.IPublisher,
	googleAuthVerifier google_auth.IAuthVerifier,
	permissions *config.PermissionConfig,
	store cache.Cache,
	strictSession bool,
) IAuthService {
	if reflect.ValueOf(userService).IsNil() {
		panic("auth service initialization failed: userService cannot be nil")
	}
	if reflect.ValueOf(sessionService).IsNil() {
		panic("auth service initialization failed: sessionService cannot be nil")
	}
	if reflect.ValueOf(tokenService).IsNil() {
		panic("auth service initialization failed: tokenService cannot be nil")
	}
	if reflect.ValueOf(rateLimitService).IsNil() {
		panic("auth service initialization failed: rateLimitService cannot be nil")
	}
	if reflect.ValueOf(auditService).IsNil() {
		panic("auth service initialization failed: auditService cannot be nil")
	}
	if reflect.ValueOf(googleAuthVerifier).IsNil() {
		panic("auth service initialization failed: googleAuthVerifier cannot be nil")
	}
	if reflect.ValueOf(store).IsNil() {
		panic("auth service initialization failed: store cannot be nil")
	}

	return &AuthService{
		userService:        userService,
		sessionService:     sessionService,
		tokenService:       tokenService,
		rateLimitService:   rateLimitService,
		auditService:       auditService,
		publisher:          publisher,
		googleAuthVerifier: googleAuthVerifier,
		permissions:        permissions,
		cache:              store,
		strictSession:      strictSession,
	}
}

func (a *AuthService) Register(ctx context.Context, arg *model.CreateUserModel) (*model.AuthResultModel, error) {
	deviceInfo := util.GetDeviceInfoFromContext(ctx)

	user, err := a.userService.CreateUser(ctx, arg)
	if err != nil {
		return nil, err
	}

	result, err := a.establishSession(ctx, user, deviceInfo, false)
	if err != nil {
		return nil, err
	}

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventUserRegistered,
		UserID:    user.ID,
		Metadata:  map[string]string{"email": user.Email},
	})
	return result, nil
}

func (a *AuthService) Login(ctx context.Context, arg *model.LoginModel) (*model.AuthResultModel, error) {
	deviceInfo := util.GetDeviceInfoFromContext(ctx)
	clientIP := deviceInfo.IPAddress.String()

	if err := a.rateLimitService.CheckLoginAllowed(ctx, arg.Email, clientIP); err != nil {
		return nil, err
	}

	user, err := a.userService.GetUserByEmail(ctx, arg.Email)
	if err != nil {
		if er.CodeOf(err) == er.UserNotFoundCode {
			a.recordLoginFailure(ctx, nil, arg.Email, deviceInfo, "user not found")
			//不洩漏帳號是否存在
			return nil, er.New(er.UnauthenticatedCode, "invalid credentials")
		}
		return nil, err
	}

	// pending帳號在自動啟用政策下允許繼續, 待密碼驗證成功後轉active
	autoActivate := user.Status == constants.UserStatusPendingVerification && a.userService.AutoActivateEnabled()
	if !autoActivate {
		if err := a.checkUserStatus(user); err != nil {
			a.recordLoginFailure(ctx, &user.ID, arg.Email, deviceInfo, string(user.Status))
			return nil, err
		}
	}

	if user.HashPassword == nil || !util.CheckPassword(arg.Password, *user.HashPassword) {
		a.rateLimitService.RecordFailure(ctx, arg.Email, clientIP)
		a.recordLoginFailure(ctx, &user.ID, arg.Email, deviceInfo, "invalid password")
		return nil, er.New(er.UnauthenticatedCode, "invalid credentials")
	}

	if autoActivate {
		if err := a.userService.ActivateUser(ctx, user); err != nil {
			return nil, err
		}
		user.Status = constants.UserStatusActive
	}

	if a.strictSession {
		if err := a.revokeExistingSessions(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	result, err := a.establishSession(ctx, user, deviceInfo, arg.RememberMe)
	if err != nil {
		return nil, err
	}

	a.rateLimitService.Reset(ctx, arg.Email, clientIP)
	a.recordLoginSuccess(ctx, user, deviceInfo, result.Session.ID, "password")
	return result, nil
}

func (a *AuthService) SocialLogin(ctx context.Context, idToken string, rememberMe bool) (*model.AuthResultModel, error) {
	authUserInfo, err := a.googleAuthVerifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, er.New(er.UnauthenticatedCode, err.Error())
	}

	deviceInfo := util.GetDeviceInfoFromContext(ctx)

	user, err := a.userService.GetOrCreateSocialUser(ctx, &model.SocialLoginModel{
		Email:         authUserInfo.Email,
		GoogleID:      authUserInfo.ID,
		Name:          authUserInfo.Name,
		EmailVerified: authUserInfo.IsEmailVerified(),
	})
	if err != nil {
		return nil, err
	}

	if err := a.checkUserStatus(user); err != nil {
		a.recordLoginFailure(ctx, &user.ID, user.Email, deviceInfo, string(user.Status))
		return nil, err
	}

	if a.strictSession {
		if err := a.revokeExistingSessions(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	result, err := a.establishSession(ctx, user, deviceInfo, rememberMe)
	if err != nil {
		return nil, err
	}

	a.recordLoginSuccess(ctx, user, deviceInfo, result.Session.ID, "google")
	return result, nil
}

func (a *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPairModel, error) {
	payload, err := a.tokenService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, er.New(er.UnauthenticatedCode, err.Error())
	}

	// session狀態先於pointer檢查: 已撤銷session的refresh不應觸發重放偵測
	session, err := a.sessionService.GetSessionByID(ctx, payload.SessionID)
	if err != nil {
		if er.CodeOf(err) == er.DataNotExistsCode {
			return nil, er.New(er.UnauthenticatedCode, "session not found")
		}
		return nil, err
	}
	if !session.IsActive || session.RevokedAt != nil {
		return nil, er.New(er.UnauthenticatedCode, "session has been revoked")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, er.New(er.UnauthenticatedCode, "session has expired")
	}

	user, err := a.userService.GetUserByID(ctx, payload.UserID())
	if err != nil {
		return nil, er.New(er.UnauthenticatedCode, "user not found")
	}
	if err := a.checkUserStatus(user); err != nil {
		return nil, err
	}

	pair, err := a.tokenService.RotateTokenPair(ctx, user, session, a.permissionsForRole(user.Role), payload)
	if err != nil {
		if errors.Is(err, ErrReuseDetected) {
			a.handleReuseDetected(ctx, user, session)
			//對外與一般驗證失敗無法區分
			return nil, er.New(er.UnauthenticatedCode, "invalid refresh token")
		}
		return nil, err
	}

	_, err = a.sessionService.UpdateSessionTokens(ctx, session.ID,
		util.HashToken(pair.AccessToken), util.HashToken(pair.RefreshToken))
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (a *AuthService) Logout(ctx context.Context, payload *token.AccessPayload, allDevices bool) error {
	userID := payload.UserID()

	if allDevices {
		sessions, err := a.sessionService.ListActiveByUser(ctx, userID, payload.SessionID)
		if err != nil {
			return err
		}
		// pointer先清, row後flip: 中途失敗時refresh已不可用
		for _, s := range sessions {
			if err := a.tokenService.RemoveFamilyPointer(ctx, userID, s.FamilyID); err != nil {
				return err
			}
		}
		if err := a.sessionService.RevokeAllSessions(ctx, userID); err != nil {
			return err
		}
		if err := a.tokenService.InvalidateAllForUser(ctx, userID); err != nil {
			return err
		}
	} else {
		session, err := a.sessionService.GetSessionByID(ctx, payload.SessionID)
		if err != nil {
			if er.CodeOf(err) == er.DataNotExistsCode {
				//冪等: session已不存在視為登出成功
				return a.tokenService.BlacklistAccessToken(ctx, payload)
			}
			return err
		}
		if err := a.tokenService.RemoveFamilyPointer(ctx, userID, session.FamilyID); err != nil {
			return err
		}
		if err := a.sessionService.RevokeSession(ctx, payload.SessionID, userID); err != nil {
			//已撤銷的session回404, 登出仍視為成功
			if er.CodeOf(err) != er.NotFoundCode {
				return err
			}
		}
	}

	if err := a.tokenService.BlacklistAccessToken(ctx, payload); err != nil {
		return err
	}

	metadata := map[string]string{}
	if allDevices {
		metadata["all_devices"] = "true"
	}
	a.publishEvent(model.AuthEventModel{
		EventType: model.EventUserLogout,
		UserID:    userID,
		SessionID: payload.SessionID,
		Metadata:  metadata,
	})
	return nil
}

func (a *AuthService) ListSessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]model.UserSession, error) {
	return a.sessionService.ListActiveByUser(ctx, userID, currentSessionID)
}

func (a *AuthService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := a.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		if er.CodeOf(err) == er.DataNotExistsCode {
			return er.New(er.NotFoundCode, "session not found")
		}
		return err
	}
	// 不存在與無權限回同一個404, 不洩漏session ID是否存在
	if session.UserID != userID {
		return er.New(er.NotFoundCode, "session not found")
	}

	if err := a.tokenService.RemoveFamilyPointer(ctx, userID, session.FamilyID); err != nil {
		return err
	}
	if err := a.sessionService.RevokeSession(ctx, sessionID, userID); err != nil {
		return err
	}

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventSessionRevoked,
		UserID:    userID,
		SessionID: sessionID,
	})
	return nil
}

func (a *AuthService) RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error {
	sessions, err := a.sessionService.ListActiveByUser(ctx, userID, currentSessionID)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		if s.IsCurrent {
			continue
		}
		if err := a.tokenService.RemoveFamilyPointer(ctx, userID, s.FamilyID); err != nil {
			return err
		}
	}
	if err := a.sessionService.RevokeOtherSessions(ctx, userID, currentSessionID); err != nil {
		return err
	}

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventSessionRevoked,
		UserID:    userID,
		SessionID: currentSessionID,
		Metadata:  map[string]string{"scope": "others"},
	})
	return nil
}

func (a *AuthService) ChangePassword(ctx context.Context, arg *model.ChangePasswordModel) error {
	user, err := a.userService.GetUserByID(ctx, arg.UserID)
	if err != nil {
		return err
	}
	if user.HashPassword == nil {
		return er.New(er.InvalidOperationCode, "password login is not enabled for this account")
	}
	if !util.CheckPassword(arg.CurrentPassword, *user.HashPassword) {
		return er.New(er.UnauthenticatedCode, "current password is incorrect")
	}

	if err := a.userService.UpdatePassword(ctx, arg.UserID, arg.NewPassword); err != nil {
		return err
	}

	// 改密碼後踢掉其他裝置, 當前session保留
	if err := a.RevokeOtherSessions(ctx, arg.UserID, arg.CurrentSessionID); err != nil {
		return err
	}

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventUserPasswordChanged,
		UserID:    arg.UserID,
		SessionID: arg.CurrentSessionID,
	})
	return nil
}

func (a *AuthService) Me(ctx context.Context) (*model.UserModel, error) {
	payload := util.GetTokenPayloadFromContext(ctx)
	if payload == nil {
		return nil, er.New(er.UnauthenticatedCode, "missing token payload")
	}
	return a.userService.GetUserByID(ctx, payload.UserID())
}

func (a *AuthService) VerifyAccessToken(ctx context.Context, tokenStr string) (*token.AccessPayload, error) {
	payload, err := a.tokenService.VerifyAccessToken(ctx, tokenStr)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpiredToken),
			errors.Is(err, token.ErrInvalidToken),
			errors.Is(err, token.ErrWrongTokenType),
			errors.Is(err, ErrTokenBlacklisted),
			errors.Is(err, ErrVersionInvalidated):
			return nil, er.New(er.UnauthenticatedCode, err.Error())
		default:
			return nil, err
		}
	}
	return payload, nil
}

func (a *AuthService) Introspect(ctx context.Context, tokenStr string) (*model.IntrospectionModel, error) {
	return a.tokenService.Introspect(ctx, tokenStr)
}

func (a *AuthService) TouchSession(ctx context.Context, sessionID uuid.UUID) {
	// SetNX當節流閥, 同一session在視窗內只落一次DB寫入; cache故障時照寫
	fresh, err := a.cache.SetNX(ctx, sessionTouchKey(sessionID), 1, constants.SessionTouchInterval)
	if err == nil && !fresh {
		return
	}
	if err := a.sessionService.UpdateActivity(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to update session activity")
	}
}

func sessionTouchKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", constants.SessionTouchKeyPrefix, sessionID)
}

// revokeExistingSessions 單一session policy用, 建立新session前撤銷該user所有既存session
// pointer先清, row後flip, 與logout all devices同一順序
func (a *AuthService) revokeExistingSessions(ctx context.Context, userID uuid.UUID) error {
	sessions, err := a.sessionService.ListActiveByUser(ctx, userID, uuid.Nil)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if err := a.tokenService.RemoveFamilyPointer(ctx, userID, s.FamilyID); err != nil {
			return err
		}
	}
	return a.sessionService.RevokeAllSessions(ctx, userID)
}

// establishSession 建立session row並簽發token pair
// token hash落地, 明文只回給呼叫端
func (a *AuthService) establishSession(ctx context.Context, user *model.UserModel, deviceInfo util.DeviceInfo, rememberMe bool) (*model.AuthResultModel, error) {
	sessionID := uuid.New()
	pair, err := a.tokenService.IssueTokenPair(ctx, user, sessionID, a.permissionsForRole(user.Role), rememberMe)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session, err := a.sessionService.CreateSession(ctx, &model.UserSession{
		ID:               sessionID,
		UserID:           user.ID,
		FamilyID:         pair.FamilyID,
		AccessTokenHash:  util.HashToken(pair.AccessToken),
		RefreshTokenHash: util.HashToken(pair.RefreshToken),
		IPAddress:        deviceInfo.IPAddress,
		UserAgent:        optional(deviceInfo.UserAgent),
		DeviceType:       string(deviceInfo.DeviceType),
		DeviceName:       optional(deviceInfo.DeviceName),
		LastActivityAt:   now,
		CreatedAt:        now,
		ExpiresAt:        pair.RefreshExpiresAt,
	})
	if err != nil {
		// session落地失敗時回收pointer, 不留下無主的refresh family
		if cleanupErr := a.tokenService.RemoveFamilyPointer(ctx, user.ID, pair.FamilyID); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Msg("failed to cleanup family pointer")
		}
		return nil, err
	}

	if err := a.userService.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}

	return &model.AuthResultModel{
		User:      *user,
		TokenPair: *pair,
		Session:   *session,
	}, nil
}

// handleReuseDetected 重放偵測後的善後
// token version已在rotation失敗時bump, 這裡撤銷session並發出告警事件
func (a *AuthService) handleReuseDetected(ctx context.Context, user *model.UserModel, session *model.UserSession) {
	if err := a.tokenService.RemoveFamilyPointer(ctx, user.ID, session.FamilyID); err != nil {
		log.Warn().Err(err).Msg("failed to remove family pointer after reuse detection")
	}
	if err := a.sessionService.RevokeSession(ctx, session.ID, user.ID); err != nil && er.CodeOf(err) != er.NotFoundCode {
		log.Warn().Err(err).Msg("failed to revoke session after reuse detection")
	}

	log.Warn().
		Str("user_id", user.ID.String()).
		Str("session_id", session.ID.String()).
		Msg("refresh token reuse detected")

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventTokenReuseDetected,
		UserID:    user.ID,
		SessionID: session.ID,
	})
}

// checkUserStatus 帳號狀態gate
// deleted與不存在同樣回401, 避免探測
func (a *AuthService) checkUserStatus(user *model.UserModel) error {
	switch user.Status {
	case constants.UserStatusActive:
		return nil
	case constants.UserStatusPendingVerification:
		return er.New(er.UserDisabledCode, "account is pending verification")
	case constants.UserStatusSuspended:
		return er.New(er.UserSuspendedCode, "account is suspended")
	default:
		return er.New(er.UnauthenticatedCode, "invalid credentials")
	}
}

func (a *AuthService) permissionsForRole(role string) []string {
	if a.permissions == nil {
		return nil
	}
	return a.permissions.PermissionsForRole(role)
}

func (a *AuthService) recordLoginSuccess(ctx context.Context, user *model.UserModel, deviceInfo util.DeviceInfo, sessionID uuid.UUID, provider string) {
	go func() {
		auditCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := a.auditService.RecordLoginAttempt(auditCtx, &model.LoginAttemptModel{
			UserID:     &user.ID,
			Email:      user.Email,
			IPAddress:  deviceInfo.IPAddress.String(),
			UserAgent:  deviceInfo.UserAgent,
			DeviceType: string(deviceInfo.DeviceType),
			Success:    true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to record login attempt")
		}
	}()

	a.publishEvent(model.AuthEventModel{
		EventType: model.EventUserLogin,
		UserID:    user.ID,
		SessionID: sessionID,
		Metadata:  map[string]string{"provider": provider},
	})
}

func (a *AuthService) recordLoginFailure(ctx context.Context, userID *uuid.UUID, email string, deviceInfo util.DeviceInfo, reason string) {
	go func() {
		auditCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := a.auditService.RecordLoginAttempt(auditCtx, &model.LoginAttemptModel{
			UserID:        userID,
			Email:         email,
			IPAddress:     deviceInfo.IPAddress.String(),
			UserAgent:     deviceInfo.UserAgent,
			DeviceType:    string(deviceInfo.DeviceType),
			Success:       false,
			FailureReason: &reason,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to record login attempt")
		}
	}()
}

// publishEvent 異步發佈auth事件, 發佈失敗不影響主流程
func (a *AuthService) publishEvent(event model.AuthEventModel) {
	if a.publisher == nil {
		return
	}
	event.EventID = uuid.New()
	event.OccurredAt = time.Now().UTC()

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.publisher.Publish(pubCtx, event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("failed to publish auth event")
		}
	}()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
