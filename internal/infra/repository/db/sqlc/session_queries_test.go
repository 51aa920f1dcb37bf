package sqlc

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func createRandomUser(t *testing.T) User {
	t.Helper()

	arg := CreateUserParams{
		ID:        util.UUIDToPgUUIDV5(uuid.New()),
		TenantID:  "default",
		Email:     util.RandomEmail(),
		Role:      "user",
		Status:    "active",
		CreatedAt: time.Now().UTC(),
	}

	user, err := testQueries.CreateUser(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, user)
	require.Equal(t, arg.Email, user.Email)
	require.Equal(t, arg.Role, user.Role)
	require.NotZero(t, user.CreatedAt)

	return user
}

func createRandomSession(t *testing.T, userID pgtype.UUID) UserSession {
	t.Helper()

	now := time.Now().UTC()
	session, err := testQueries.CreateSession(context.Background(), CreateSessionParams{
		ID:               util.UUIDToPgUUIDV5(uuid.New()),
		UserID:           userID,
		FamilyID:         util.UUIDToPgUUIDV5(uuid.New()),
		AccessTokenHash:  util.HashToken(util.RandomString(32)),
		RefreshTokenHash: util.HashToken(util.RandomString(32)),
		IpAddress:        netip.MustParseAddr("10.0.0.1"),
		DeviceType:       "desktop",
		IsActive:         true,
		LastActivityAt:   now,
		CreatedAt:        now,
		ExpiresAt:        now.Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, userID, session.UserID)
	require.True(t, session.IsActive)

	return session
}

func TestCreateSession(t *testing.T) {
	if testQueries == nil {
		t.Skip("Database not configured, skipping TestCreateSession")
	}
	user := createRandomUser(t)
	t.Cleanup(func() {
		testQueries.DeleteUser(context.Background(), user.ID)
	})

	session := createRandomSession(t, user.ID)
	require.Equal(t, user.ID, session.UserID)
	require.False(t, session.RevokedAt.Valid)
}

func TestRevokeSessionOwnership(t *testing.T) {
	if testQueries == nil {
		t.Skip("Database not configured, skipping TestRevokeSessionOwnership")
	}
	user := createRandomUser(t)
	other := createRandomUser(t)
	t.Cleanup(func() {
		testQueries.DeleteUser(context.Background(), user.ID)
		testQueries.DeleteUser(context.Background(), other.ID)
	})

	session := createRandomSession(t, user.ID)

	// 他人撤銷不生效
	rows, err := testQueries.RevokeSession(context.Background(), RevokeSessionParams{
		ID:     session.ID,
		UserID: other.ID,
	})
	require.NoError(t, err)
	require.Zero(t, rows)

	// 本人撤銷生效, 重複撤銷為0
	rows, err = testQueries.RevokeSession(context.Background(), RevokeSessionParams{
		ID:     session.ID,
		UserID: user.ID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = testQueries.RevokeSession(context.Background(), RevokeSessionParams{
		ID:     session.ID,
		UserID: user.ID,
	})
	require.NoError(t, err)
	require.Zero(t, rows)
}

func TestListActiveSessionsOrder(t *testing.T) {
	if testQueries == nil {
		t.Skip("Database not configured, skipping TestListActiveSessionsOrder")
	}
	user := createRandomUser(t)
	t.Cleanup(func() {
		testQueries.DeleteUser(context.Background(), user.ID)
	})

	s1 := createRandomSession(t, user.ID)
	s2 := createRandomSession(t, user.ID)

	err := testQueries.UpdateSessionActivity(context.Background(), UpdateSessionActivityParams{
		ID:             s1.ID,
		LastActivityAt: time.Now().UTC().Add(time.Minute),
	})
	require.NoError(t, err)

	sessions, err := testQueries.ListActiveSessionsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, s1.ID, sessions[0].ID)
	require.Equal(t, s2.ID, sessions[1].ID)
}

func TestDeleteExpiredSessions(t *testing.T) {
	if testQueries == nil {
		t.Skip("Database not configured, skipping TestDeleteExpiredSessions")
	}
	user := createRandomUser(t)
	t.Cleanup(func() {
		testQueries.DeleteUser(context.Background(), user.ID)
	})

	now := time.Now().UTC()
	_, err := testQueries.CreateSession(context.Background(), CreateSessionParams{
		ID:               util.UUIDToPgUUIDV5(uuid.New()),
		UserID:           user.ID,
		FamilyID:         util.UUIDToPgUUIDV5(uuid.New()),
		AccessTokenHash:  util.HashToken("a"),
		RefreshTokenHash: util.HashToken("r"),
		IpAddress:        netip.MustParseAddr("10.0.0.2"),
		DeviceType:       "mobile",
		IsActive:         true,
		LastActivityAt:   now.Add(-30 * 24 * time.Hour),
		CreatedAt:        now.Add(-30 * 24 * time.Hour),
		ExpiresAt:        now.Add(-20 * 24 * time.Hour),
	})
	require.NoError(t, err)

	deleted, err := testQueries.DeleteExpiredSessions(context.Background(), DeleteExpiredSessionsParams{
		ExpiresAt:      now.Add(-7 * 24 * time.Hour),
		LastActivityAt: now.Add(-7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, deleted, int64(1))
}
