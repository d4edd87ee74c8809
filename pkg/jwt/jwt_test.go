package jwt_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appjwt "github.com/prism-worklet/prism-api/pkg/jwt"
)

func newTestManager(t *testing.T, accessTTL, refreshTTL time.Duration) (*appjwt.TokenManager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tm, err := appjwt.NewTokenManager(appjwt.Config{
		Secret:     "test-secret",
		Algorithm:  "HS256",
		Issuer:     "prism-api-test",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}, client)
	require.NoError(t, err)

	return tm, mr
}

func TestNewTokenManager_RejectsNonHMAC(t *testing.T) {
	_, err := appjwt.NewTokenManager(appjwt.Config{
		Secret:    "s",
		Algorithm: "RS256",
	}, nil)
	assert.Error(t, err)

	_, err = appjwt.NewTokenManager(appjwt.Config{
		Secret:    "s",
		Algorithm: "bogus",
	}, nil)
	assert.Error(t, err)
}

func TestVerify_AccessToken(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	token, err := tm.IssueAccess("a@x.com", "Student", 42)
	require.NoError(t, err)

	claims, err := tm.Verify(ctx, token, appjwt.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "Student", claims.Role)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, appjwt.KindAccess, claims.Kind)
}

func TestVerify_WrongKind(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	access, err := tm.IssueAccess("a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Verify(ctx, access, appjwt.KindRefresh)
	assert.ErrorIs(t, err, appjwt.ErrWrongKind)

	refresh, err := tm.IssueRefresh(ctx, "a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Verify(ctx, refresh, appjwt.KindAccess)
	assert.ErrorIs(t, err, appjwt.ErrWrongKind)
}

func TestVerify_Malformed(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)

	_, err := tm.Verify(context.Background(), "not-a-token", appjwt.KindAccess)
	assert.ErrorIs(t, err, appjwt.ErrMalformedToken)
}

func TestVerify_Expired(t *testing.T) {
	tm, _ := newTestManager(t, -time.Minute, time.Hour)

	token, err := tm.IssueAccess("a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Verify(context.Background(), token, appjwt.KindAccess)
	assert.ErrorIs(t, err, appjwt.ErrExpiredToken)
}

func TestVerify_RefreshRequiresRegistryEntry(t *testing.T) {
	tm, mr := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	refresh, err := tm.IssueRefresh(ctx, "a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Verify(ctx, refresh, appjwt.KindRefresh)
	require.NoError(t, err)

	// Simulate registry eviction: unexpired refresh tokens absent from
	// the registry are revoked.
	mr.FlushAll()

	_, err = tm.Verify(ctx, refresh, appjwt.KindRefresh)
	assert.ErrorIs(t, err, appjwt.ErrRevokedToken)
}

func TestRevoke_BlacklistsAndDeregisters(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	refresh, err := tm.IssueRefresh(ctx, "a@x.com", "Student", 1)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(ctx, refresh))

	blacklisted, err := tm.IsBlacklisted(ctx, refresh)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	_, err = tm.Verify(ctx, refresh, appjwt.KindRefresh)
	assert.ErrorIs(t, err, appjwt.ErrRevokedToken)
}

func TestRevoke_GarbageIsNoop(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)

	assert.NoError(t, tm.Revoke(context.Background(), "garbage"))
}

func TestRotate_IssuesNewPairAndInvalidatesOld(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	old, err := tm.IssueRefresh(ctx, "a@x.com", "Mentor", 7)
	require.NoError(t, err)

	pair, err := tm.Rotate(ctx, old)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, old, pair.RefreshToken)

	// New refresh token is active.
	claims, err := tm.Verify(ctx, pair.RefreshToken, appjwt.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "Mentor", claims.Role)

	// Old refresh token is permanently out.
	_, err = tm.Verify(ctx, old, appjwt.KindRefresh)
	assert.ErrorIs(t, err, appjwt.ErrRevokedToken)
}

func TestRotate_SecondRotationFails(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	old, err := tm.IssueRefresh(ctx, "a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Rotate(ctx, old)
	require.NoError(t, err)

	_, err = tm.Rotate(ctx, old)
	assert.ErrorIs(t, err, appjwt.ErrRevokedToken)
}

func TestRotate_ConcurrentSingleWinner(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)
	ctx := context.Background()

	old, err := tm.IssueRefresh(ctx, "a@x.com", "Student", 1)
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := tm.Rotate(ctx, old)
			results <- err
		}()
	}

	var wins, losses int
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, appjwt.ErrRevokedToken)
			losses++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestRotate_RejectsAccessToken(t *testing.T) {
	tm, _ := newTestManager(t, time.Minute, time.Hour)

	access, err := tm.IssueAccess("a@x.com", "Student", 1)
	require.NoError(t, err)

	_, err = tm.Rotate(context.Background(), access)
	assert.ErrorIs(t, err, appjwt.ErrWrongKind)
}

func TestTimingSafeCompare(t *testing.T) {
	assert.True(t, appjwt.TimingSafeCompare("abc", "abc"))
	assert.False(t, appjwt.TimingSafeCompare("abc", "abd"))
	assert.False(t, appjwt.TimingSafeCompare("abc", "abcd"))
}
