package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/config"
	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/google_auth"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache/memory"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserStore 以map實作IUserService, 測試orchestrator用
type fakeUserStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*model.UserModel
	autoActivate bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.UserModel)}
}

func (f *fakeUserStore) seed(user *model.UserModel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeUserStore) CreateUser(ctx context.Context, arg *model.CreateUserModel) (*model.UserModel, error) {
	if err := util.ValidateStringPassword(arg.Password); err != nil {
		return nil, er.New(er.InvalidArgumentCode, err.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == arg.Email {
			return nil, er.New(er.InvalidOperationCode, "email already exists")
		}
	}
	hashed, err := util.HashPassword(arg.Password, bcrypt.MinCost)
	if err != nil {
		return nil, er.New(er.InternalErrorCode, err.Error())
	}
	user := &model.UserModel{
		ID:           uuid.New(),
		TenantID:     "default",
		Email:        arg.Email,
		HashPassword: &hashed,
		Role:         "user",
		Status:       constants.UserStatusPendingVerification,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, er.New(er.UserNotFoundCode, "user not found")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, er.New(er.UserNotFoundCode, "user not found")
}

func (f *fakeUserStore) AutoActivateEnabled() bool {
	return f.autoActivate
}

func (f *fakeUserStore) ActivateUser(ctx context.Context, user *model.UserModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[user.ID]; ok {
		u.Status = constants.UserStatusActive
	}
	return nil
}

func (f *fakeUserStore) GetOrCreateSocialUser(ctx context.Context, arg *model.SocialLoginModel) (*model.UserModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == arg.Email {
			if u.GoogleID == nil {
				u.GoogleID = &arg.GoogleID
			}
			if u.Status == constants.UserStatusPendingVerification && arg.EmailVerified {
				u.Status = constants.UserStatusActive
				u.EmailVerified = true
			}
			clone := *u
			return &clone, nil
		}
	}
	user := &model.UserModel{
		ID:            uuid.New(),
		TenantID:      "default",
		Email:         arg.Email,
		Role:          "user",
		Status:        constants.UserStatusActive,
		EmailVerified: arg.EmailVerified,
		GoogleID:      &arg.GoogleID,
		CreatedAt:     time.Now().UTC(),
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if err := util.ValidateStringPassword(newPassword); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return er.New(er.UserNotFoundCode, "user not found")
	}
	hashed, err := util.HashPassword(newPassword, bcrypt.MinCost)
	if err != nil {
		return er.New(er.InternalErrorCode, err.Error())
	}
	user.HashPassword = &hashed
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		now := time.Now().UTC()
		user.LastLoginAt = &now
	}
	return nil
}

// fakeSessionStore 以map實作ISessionService
type fakeSessionStore struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*model.UserSession
	touchWrites int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.UserSession)}
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, session *model.UserSession) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *session
	clone.IsActive = true
	f.sessions[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (f *fakeSessionStore) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, er.New(er.DataNotExistsCode, "session not found")
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionStore) ListActiveByUser(ctx context.Context, userID, currentSessionID uuid.UUID) ([]model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []model.UserSession{}
	for _, s := range f.sessions {
		if s.UserID == userID && s.IsActive && time.Now().Before(s.ExpiresAt) {
			clone := *s
			clone.IsCurrent = clone.ID == currentSessionID
			result = append(result, clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastActivityAt.After(result[j].LastActivityAt)
	})
	return result, nil
}

func (f *fakeSessionStore) UpdateActivity(ctx context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchWrites++
	if s, ok := f.sessions[sessionID]; ok {
		s.LastActivityAt = time.Now().UTC()
	}
	return nil
}

func (f *fakeSessionStore) touchWriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touchWrites
}

func (f *fakeSessionStore) UpdateSessionTokens(ctx context.Context, sessionID uuid.UUID, accessTokenHash, refreshTokenHash string) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, er.New(er.DataNotExistsCode, "session not found")
	}
	s.AccessTokenHash = accessTokenHash
	s.RefreshTokenHash = refreshTokenHash
	s.LastActivityAt = time.Now().UTC()
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) RevokeSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID || !s.IsActive {
		return er.New(er.NotFoundCode, "session not found")
	}
	now := time.Now().UTC()
	s.IsActive = false
	s.RevokedAt = &now
	return nil
}

func (f *fakeSessionStore) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, s := range f.sessions {
		if s.UserID == userID && s.IsActive {
			s.IsActive = false
			s.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeSessionStore) RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, s := range f.sessions {
		if s.UserID == userID && s.ID != currentSessionID && s.IsActive {
			s.IsActive = false
			s.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeAuditStore 記錄審計呼叫
type fakeAuditStore struct {
	mu       sync.Mutex
	attempts []model.LoginAttemptModel
}

func (f *fakeAuditStore) RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttemptModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAuditStore) count(success bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.attempts {
		if a.Success == success {
			n++
		}
	}
	return n
}

// fakePublisher 收集發佈的事件
type fakePublisher struct {
	mu     sync.Mutex
	events []model.AuthEventModel
}

func (f *fakePublisher) Publish(ctx context.Context, event model.AuthEventModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) countByType(eventType model.AuthEventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// fakeVerifier 固定回傳設定好的UserInfo
type fakeVerifier struct {
	info *google_auth.UserInfo
	err  error
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*google_auth.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type authFixture struct {
	svc      IAuthService
	users    *fakeUserStore
	sessions *fakeSessionStore
	tokens   ITokenService
	audit    *fakeAuditStore
	events   *fakePublisher
	verifier *fakeVerifier
	store    *memory.MemoryCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	maker, err := token.NewJWTMaker(util.RandomString(32), util.RandomString(32), "authkeeper", "authkeeper-client")
	require.NoError(t, err)

	store := memory.NewMemoryCache()
	tokens := NewTokenService(maker, store)
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	audit := &fakeAuditStore{}
	events := &fakePublisher{}
	verifier := &fakeVerifier{}

	permissions := &config.PermissionConfig{
		RolePermissions: []config.RolePermission{
			{Role: "user", Permissions: []string{"session:read", "session:revoke"}},
		},
	}

	svc := NewAuthService(users, sessions, tokens, NewRateLimitService(store), audit, events, verifier, permissions, store, false)
	return &authFixture{
		svc:      svc,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		audit:    audit,
		events:   events,
		verifier: verifier,
		store:    store,
	}
}

func (fx *authFixture) seedActiveUser(t *testing.T, password string) *model.UserModel {
	t.Helper()
	hashed, err := util.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.UserModel{
		ID:           uuid.New(),
		TenantID:     "default",
		Email:        util.RandomEmail(),
		HashPassword: &hashed,
		Role:         "user",
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	fx.users.seed(user)
	return user
}

const testPassword = "Sup3rSecret"

func TestLoginSuccess(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)
	require.Equal(t, 900, result.TokenPair.AccessExpiresIn)
	require.NotEmpty(t, result.TokenPair.AccessToken)
	require.NotEmpty(t, result.TokenPair.RefreshToken)

	// session row存的是hash, 不落地明文token
	session, err := fx.sessions.GetSessionByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.Equal(t, util.HashToken(result.TokenPair.AccessToken), session.AccessTokenHash)
	require.Equal(t, util.HashToken(result.TokenPair.RefreshToken), session.RefreshTokenHash)
	require.Equal(t, result.TokenPair.FamilyID, session.FamilyID)
	require.True(t, session.IsActive)

	payload, err := fx.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"session:read", "session:revoke"}, payload.Permissions)

	require.Eventually(t, func() bool {
		return fx.audit.count(true) == 1 && fx.events.countByType(model.EventUserLogin) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestLoginStrictSessionPolicy(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	permissions := &config.PermissionConfig{
		RolePermissions: []config.RolePermission{
			{Role: "user", Permissions: []string{"session:read", "session:revoke"}},
		},
	}
	strictSvc := NewAuthService(fx.users, fx.sessions, fx.tokens, NewRateLimitService(fx.store),
		&fakeAuditStore{}, &fakePublisher{}, &fakeVerifier{}, permissions, fx.store, true)

	first, err := strictSvc.Login(context.Background(), &model.LoginModel{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	second, err := strictSvc.Login(context.Background(), &model.LoginModel{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	//只剩最新的session存活
	sessions, err := strictSvc.ListSessions(context.Background(), user.ID, second.Session.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, second.Session.ID, sessions[0].ID)

	//第一把refresh token已不可rotation
	_, err = strictSvc.RefreshToken(context.Background(), first.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	//最新session的refresh不受影響
	_, err = strictSvc.RefreshToken(context.Background(), second.TokenPair.RefreshToken)
	require.NoError(t, err)
}

func TestLoginWrongPasswordGenericError(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	_, err := fx.svc.Login(context.Background(), &model.LoginModel{
		Email:    user.Email,
		Password: "WrongPassw0rd",
	})
	require.Error(t, err)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	// 帳號不存在回同一個錯誤
	_, err2 := fx.svc.Login(context.Background(), &model.LoginModel{
		Email:    util.RandomEmail(),
		Password: "WrongPassw0rd",
	})
	require.Equal(t, er.CodeOf(err), er.CodeOf(err2))

	require.Eventually(t, func() bool {
		return fx.audit.count(false) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestLoginRateLimited(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	for i := 0; i < constants.LoginRateLimitMax; i++ {
		_, err := fx.svc.Login(context.Background(), &model.LoginModel{
			Email:    user.Email,
			Password: "WrongPassw0rd",
		})
		require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
	}

	// 第11次連密碼都不驗, 直接429
	_, err := fx.svc.Login(context.Background(), &model.LoginModel{
		Email:    user.Email,
		Password: testPassword,
	})
	require.Equal(t, er.RateLimitCode, er.CodeOf(err))
}

func TestLoginStatusGate(t *testing.T) {
	fx := newAuthFixture(t)

	suspended := fx.seedActiveUser(t, testPassword)
	suspended.Status = constants.UserStatusSuspended
	fx.users.seed(suspended)

	pending := fx.seedActiveUser(t, testPassword)
	pending.Status = constants.UserStatusPendingVerification
	fx.users.seed(pending)

	deleted := fx.seedActiveUser(t, testPassword)
	deleted.Status = constants.UserStatusDeleted
	fx.users.seed(deleted)

	_, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: suspended.Email, Password: testPassword})
	require.Equal(t, er.UserSuspendedCode, er.CodeOf(err))

	_, err = fx.svc.Login(context.Background(), &model.LoginModel{Email: pending.Email, Password: testPassword})
	require.Equal(t, er.UserDisabledCode, er.CodeOf(err))

	// 已刪除帳號與不存在的帳號無法區分
	_, err = fx.svc.Login(context.Background(), &model.LoginModel{Email: deleted.Email, Password: testPassword})
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
}

func TestRefreshTokenRotation(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	pair, err := fx.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, result.TokenPair.FamilyID, pair.FamilyID)
	require.NotEqual(t, result.TokenPair.RefreshToken, pair.RefreshToken)

	// session row同步換上新hash
	session, err := fx.sessions.GetSessionByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.Equal(t, util.HashToken(pair.RefreshToken), session.RefreshTokenHash)
}

func TestRefreshTokenReuseRevokesFamily(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	rotated, err := fx.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
	require.NoError(t, err)

	// 舊refresh token重放: 回401, 對外與一般失敗無法區分
	_, err = fx.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	// 整個family已失效: session被撤銷, 新access token也因version bump失效
	session, err := fx.sessions.GetSessionByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.False(t, session.IsActive)

	_, err = fx.svc.VerifyAccessToken(context.Background(), rotated.AccessToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	require.Eventually(t, func() bool {
		return fx.events.countByType(model.EventTokenReuseDetected) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRefreshRevokedSessionIsNotReuse(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	err = fx.svc.RevokeSession(context.Background(), user.ID, result.Session.ID)
	require.NoError(t, err)

	// 已撤銷session的refresh走session gate, 不觸發重放偵測
	_, err = fx.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
	require.Zero(t, fx.events.countByType(model.EventTokenReuseDetected))
}

func TestLogoutIdempotent(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	payload, err := fx.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(context.Background(), payload, false))

	// access token立即進黑名單
	_, err = fx.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	// refresh token不可再輪換
	_, err = fx.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	// 重複登出仍然成功
	require.NoError(t, fx.svc.Logout(context.Background(), payload, false))
}

func TestLogoutAllDevices(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	first, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)
	second, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	payload, err := fx.svc.VerifyAccessToken(context.Background(), second.TokenPair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(context.Background(), payload, true))

	// 所有session都被撤銷
	sessions, err := fx.svc.ListSessions(context.Background(), user.ID, payload.SessionID)
	require.NoError(t, err)
	require.Empty(t, sessions)

	// 另一台裝置的access token因version bump立即失效
	_, err = fx.svc.VerifyAccessToken(context.Background(), first.TokenPair.AccessToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
	_, err = fx.svc.RefreshToken(context.Background(), first.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
}

func TestListSessionsMarksCurrent(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	first, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)
	second, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	sessions, err := fx.svc.ListSessions(context.Background(), user.ID, second.Session.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	currentCount := 0
	for _, s := range sessions {
		if s.IsCurrent {
			currentCount++
			require.Equal(t, second.Session.ID, s.ID)
		} else {
			require.Equal(t, first.Session.ID, s.ID)
		}
	}
	require.Equal(t, 1, currentCount)
}

func TestRevokeSessionOfAnotherUser(t *testing.T) {
	fx := newAuthFixture(t)
	owner := fx.seedActiveUser(t, testPassword)
	attacker := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: owner.Email, Password: testPassword})
	require.NoError(t, err)

	// 他人的session與不存在的session回同一個404
	err = fx.svc.RevokeSession(context.Background(), attacker.ID, result.Session.ID)
	require.Equal(t, er.NotFoundCode, er.CodeOf(err))

	err = fx.svc.RevokeSession(context.Background(), attacker.ID, uuid.New())
	require.Equal(t, er.NotFoundCode, er.CodeOf(err))

	session, err := fx.sessions.GetSessionByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.True(t, session.IsActive)
}

func TestChangePassword(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	current, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)
	other, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	// 當前密碼錯誤
	err = fx.svc.ChangePassword(context.Background(), &model.ChangePasswordModel{
		UserID:           user.ID,
		CurrentPassword:  "WrongPassw0rd",
		NewPassword:      "N3wPassword",
		CurrentSessionID: current.Session.ID,
	})
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	err = fx.svc.ChangePassword(context.Background(), &model.ChangePasswordModel{
		UserID:           user.ID,
		CurrentPassword:  testPassword,
		NewPassword:      "N3wPassword",
		CurrentSessionID: current.Session.ID,
	})
	require.NoError(t, err)

	// 其他session被撤銷, 當前session保留
	currentSession, err := fx.sessions.GetSessionByID(context.Background(), current.Session.ID)
	require.NoError(t, err)
	require.True(t, currentSession.IsActive)

	otherSession, err := fx.sessions.GetSessionByID(context.Background(), other.Session.ID)
	require.NoError(t, err)
	require.False(t, otherSession.IsActive)

	// 其他裝置的refresh不可再輪換
	_, err = fx.svc.RefreshToken(context.Background(), other.TokenPair.RefreshToken)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))

	// 新密碼可登入
	_, err = fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: "N3wPassword"})
	require.NoError(t, err)
}

func TestSocialLoginCreatesUser(t *testing.T) {
	fx := newAuthFixture(t)
	email := util.RandomEmail()
	fx.verifier.info = &google_auth.UserInfo{
		ID:            "google-sub-123",
		Email:         email,
		EmailVerified: "true",
		Name:          "Royce",
	}

	result, err := fx.svc.SocialLogin(context.Background(), "id-token", false)
	require.NoError(t, err)
	require.Equal(t, email, result.User.Email)
	require.Equal(t, constants.UserStatusActive, result.User.Status)
	require.NotEmpty(t, result.TokenPair.AccessToken)

	// 再次登入解析到同一個帳號
	again, err := fx.svc.SocialLogin(context.Background(), "id-token", false)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, again.User.ID)
}

func TestSocialLoginActivatesPendingUser(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)
	user.Status = constants.UserStatusPendingVerification
	fx.users.seed(user)

	fx.verifier.info = &google_auth.UserInfo{
		ID:            "google-sub-456",
		Email:         user.Email,
		EmailVerified: "true",
	}

	result, err := fx.svc.SocialLogin(context.Background(), "id-token", false)
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)
	require.Equal(t, constants.UserStatusActive, result.User.Status)
}

func TestSocialLoginInvalidToken(t *testing.T) {
	fx := newAuthFixture(t)
	fx.verifier.err = errors.New("invalid token")

	_, err := fx.svc.SocialLogin(context.Background(), "bad-token", false)
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
}

func TestRegisterIssuesInitialSession(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.svc.Register(context.Background(), &model.CreateUserModel{
		Email:    util.RandomEmail(),
		Password: testPassword,
		Name:     "Royce",
	})
	require.NoError(t, err)
	require.Equal(t, constants.UserStatusPendingVerification, result.User.Status)
	require.Equal(t, 900, result.TokenPair.AccessExpiresIn)
	require.NotEmpty(t, result.TokenPair.AccessToken)
	require.NotEmpty(t, result.TokenPair.RefreshToken)

	// 註冊即發session, token立即可用
	session, err := fx.sessions.GetSessionByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.True(t, session.IsActive)
	require.Equal(t, util.HashToken(result.TokenPair.RefreshToken), session.RefreshTokenHash)

	_, err = fx.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return fx.events.countByType(model.EventUserRegistered) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestLoginAutoActivatesPendingUser(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.autoActivate = true
	user := fx.seedActiveUser(t, testPassword)
	user.Status = constants.UserStatusPendingVerification
	fx.users.seed(user)

	// 密碼錯誤不觸發啟用
	_, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: "WrongPassw0rd"})
	require.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
	stored, err := fx.users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, constants.UserStatusPendingVerification, stored.Status)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, constants.UserStatusActive, result.User.Status)

	stored, err = fx.users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, constants.UserStatusActive, stored.Status)
}

func TestTouchSessionThrottlesWrites(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedActiveUser(t, testPassword)

	result, err := fx.svc.Login(context.Background(), &model.LoginModel{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		fx.svc.TouchSession(context.Background(), result.Session.ID)
	}
	// 節流視窗內只落一次DB寫入
	require.Equal(t, 1, fx.sessions.touchWriteCount())

	// cache故障時不吞活動時間, 直接寫庫
	fx.store.FailAll = true
	fx.svc.TouchSession(context.Background(), result.Session.ID)
	require.Equal(t, 2, fx.sessions.touchWriteCount())
}
