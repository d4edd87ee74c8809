package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/store"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/jwt"
	"github.com/prism-worklet/prism-api/pkg/password"
)

type authFixture struct {
	accounts *mockAccountRepository
	pending  *mockPendingStore
	tokens   *mockTokenManager
	mail     *mockMailDispatcher
	hasher   *password.Hasher
	service  *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		accounts: new(mockAccountRepository),
		pending:  new(mockPendingStore),
		tokens:   new(mockTokenManager),
		mail:     new(mockMailDispatcher),
		hasher:   password.NewHasher(4),
	}

	service, err := NewAuthService(f.accounts, f.pending, f.tokens, f.hasher, f.mail, 10*time.Minute)
	require.NoError(t, err)
	f.service = service

	return f
}

func TestRequestOTPStoresPendingSignupAndQueuesMail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.accounts.On("GetByEmail", ctx, "new@example.com").Return(nil, apperrors.NotFoundError("account"))
	f.pending.On("Put", ctx, "new@example.com", mock.MatchedBy(func(code string) bool {
		return len(code) == 6
	})).Return(nil)
	f.mail.On("EnqueueVerification", "new@example.com", "Asha", mock.AnythingOfType("string")).Return()

	err := f.service.RequestOTP(ctx, &models.RequestOTPRequest{
		Email: "new@example.com",
		Name:  "Asha",
		Role:  "Student",
	})

	assert.NoError(t, err)
	f.pending.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestRequestOTPRejectsExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.accounts.On("GetByEmail", ctx, "taken@example.com").Return(&models.Account{ID: 1, Email: "taken@example.com"}, nil)

	err := f.service.RequestOTP(ctx, &models.RequestOTPRequest{
		Email: "taken@example.com",
		Name:  "Asha",
		Role:  "Student",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.pending.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "EnqueueVerification", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTPMarksPendingSignupVerified(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil)
	f.pending.On("MarkVerified", ctx, "a@example.com").Return(nil)

	err := f.service.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "a@example.com", OTPCode: "123456"})

	assert.NoError(t, err)
	f.pending.AssertExpectations(t)
}

func TestVerifyOTPWithoutPendingSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "ghost@example.com").Return(nil, apperrors.NotFoundError("pending signup"))

	err := f.service.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "ghost@example.com", OTPCode: "123456"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVerifyOTPWrongCodeReportedBeforeExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// The record is both expired and the code is wrong; the code
	// mismatch wins.
	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	err := f.service.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "a@example.com", OTPCode: "654321"})

	assert.ErrorIs(t, err, apperrors.ErrInvalid)
	f.pending.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	err := f.service.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "a@example.com", OTPCode: "123456"})

	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestSetPasswordCreatesVerifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Verified:  true,
	}, nil)
	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(nil, apperrors.NotFoundError("account"))
	f.accounts.On("Create", ctx, mock.AnythingOfType("*models.Account")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 42
	}).Return(nil)
	f.pending.On("Pop", ctx, "a@example.com").Return(&store.PendingSignup{}, nil)

	account, err := f.service.SetPassword(ctx, &models.SetPasswordRequest{
		Email:    "a@example.com",
		Name:     "Asha",
		Role:     "Student",
		Password: "Sup3r$ecret",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), account.ID)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.True(t, account.IsVerified)
	assert.True(t, f.hasher.Verify("Sup3r$ecret", account.PasswordHash))
}

func TestSetPasswordRequiresVerifiedPendingSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Verified:  false,
	}, nil)

	_, err := f.service.SetPassword(ctx, &models.SetPasswordRequest{
		Email:    "a@example.com",
		Name:     "Asha",
		Role:     "Student",
		Password: "Sup3r$ecret",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSetPasswordWithoutPendingSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(nil, apperrors.NotFoundError("pending signup"))

	_, err := f.service.SetPassword(ctx, &models.SetPasswordRequest{
		Email:    "a@example.com",
		Name:     "Asha",
		Role:     "Student",
		Password: "Sup3r$ecret",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSetPasswordLosesCreateRace(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.pending.On("Get", ctx, "a@example.com").Return(&store.PendingSignup{
		OTP:       "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Verified:  true,
	}, nil)
	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(nil, apperrors.NotFoundError("account"))
	f.accounts.On("Create", ctx, mock.AnythingOfType("*models.Account")).Return(apperrors.ConflictError("account already exists"))

	_, err := f.service.SetPassword(ctx, &models.SetPasswordRequest{
		Email:    "a@example.com",
		Name:     "Asha",
		Role:     "Student",
		Password: "Sup3r$ecret",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := f.hasher.Hash("Sup3r$ecret")
	require.NoError(t, err)

	f.accounts.On("GetByEmailAndRole", ctx, "a@example.com", models.RoleMentor).Return(&models.Account{
		ID:           7,
		Email:        "a@example.com",
		Role:         models.RoleMentor,
		PasswordHash: hash,
		IsVerified:   true,
	}, nil)
	f.tokens.On("IssuePair", ctx, "a@example.com", "Mentor", int64(7)).Return(&jwt.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil)

	pair, err := f.service.Login(ctx, &models.LoginRequest{
		Email:    "a@example.com",
		Password: "Sup3r$ecret",
		Role:     "Mentor",
	})

	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
}

func TestLoginWrongRoleMatchesWrongPasswordError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := f.hasher.Hash("Sup3r$ecret")
	require.NoError(t, err)

	account := &models.Account{
		ID:           7,
		Email:        "a@example.com",
		Role:         models.RoleMentor,
		PasswordHash: hash,
		IsVerified:   true,
	}

	f.accounts.On("GetByEmailAndRole", ctx, "a@example.com", models.RoleMentor).Return(account, nil)
	f.accounts.On("GetByEmailAndRole", ctx, "a@example.com", models.RoleStudent).Return(nil, apperrors.NotFoundError("account"))

	_, wrongPassword := f.service.Login(ctx, &models.LoginRequest{
		Email:    "a@example.com",
		Password: "not-the-password",
		Role:     "Mentor",
	})
	_, wrongRole := f.service.Login(ctx, &models.LoginRequest{
		Email:    "a@example.com",
		Password: "Sup3r$ecret",
		Role:     "Student",
	})

	require.Error(t, wrongPassword)
	require.Error(t, wrongRole)
	assert.Equal(t, wrongPassword.Error(), wrongRole.Error())
	f.tokens.AssertNotCalled(t, "IssuePair", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := f.hasher.Hash("Sup3r$ecret")
	require.NoError(t, err)

	f.accounts.On("GetByEmailAndRole", ctx, "a@example.com", models.RoleStudent).Return(&models.Account{
		ID:           9,
		Email:        "a@example.com",
		Role:         models.RoleStudent,
		PasswordHash: hash,
		IsVerified:   false,
	}, nil)

	_, err = f.service.Login(ctx, &models.LoginRequest{
		Email:    "a@example.com",
		Password: "Sup3r$ecret",
		Role:     "Student",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalid)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Rotate", ctx, "old-refresh").Return(&jwt.TokenPair{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
	}, nil)

	pair, err := f.service.Refresh(ctx, "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestRefreshPropagatesRevocation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Rotate", ctx, "used-refresh").Return(nil, jwt.ErrRevokedToken)

	_, err := f.service.Refresh(ctx, "used-refresh")

	assert.ErrorIs(t, err, jwt.ErrRevokedToken)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Revoke", ctx, "access").Return(nil)
	f.tokens.On("Revoke", ctx, "refresh").Return(nil)

	err := f.service.Logout(ctx, "access", "refresh")

	assert.NoError(t, err)
	f.tokens.AssertExpectations(t)
}

func TestLogoutWithoutAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Revoke", ctx, "refresh").Return(nil)

	err := f.service.Logout(ctx, "", "refresh")

	assert.NoError(t, err)
	f.tokens.AssertNumberOfCalls(t, "Revoke", 1)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.accounts.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.NotFoundError("account"))

	err := f.service.ForgotPassword(ctx, "ghost@example.com")

	assert.NoError(t, err)
	f.accounts.AssertNotCalled(t, "SetResetChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "EnqueuePasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPasswordStoresChallengeAndQueuesMail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(&models.Account{
		ID:    7,
		Name:  "Asha",
		Email: "a@example.com",
	}, nil)
	f.accounts.On("SetResetChallenge", ctx, "a@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	f.mail.On("EnqueuePasswordReset", "a@example.com", "Asha", mock.AnythingOfType("string")).Return()

	err := f.service.ForgotPassword(ctx, "a@example.com")

	assert.NoError(t, err)
	f.accounts.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestResetPasswordUpdatesHashAndClearsChallenge(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	code := "123456"
	expires := time.Now().Add(5 * time.Minute)

	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(&models.Account{
		ID:                7,
		Email:             "a@example.com",
		ResetOTPCode:      &code,
		ResetOTPExpiresAt: &expires,
	}, nil)
	f.accounts.On("UpdatePassword", ctx, "a@example.com", mock.AnythingOfType("string")).Return(nil)
	f.accounts.On("ClearResetChallenge", ctx, "a@example.com").Return(nil)

	err := f.service.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "a@example.com",
		OTPCode:     "123456",
		NewPassword: "N3w$ecret!",
	})

	assert.NoError(t, err)
	f.accounts.AssertExpectations(t)
}

func TestResetPasswordWithoutChallenge(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(&models.Account{
		ID:    7,
		Email: "a@example.com",
	}, nil)

	err := f.service.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "a@example.com",
		OTPCode:     "123456",
		NewPassword: "N3w$ecret!",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalid)
	f.accounts.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordExpiredChallenge(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	code := "123456"
	expires := time.Now().Add(-time.Minute)

	f.accounts.On("GetByEmail", ctx, "a@example.com").Return(&models.Account{
		ID:                7,
		Email:             "a@example.com",
		ResetOTPCode:      &code,
		ResetOTPExpiresAt: &expires,
	}, nil)

	err := f.service.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "a@example.com",
		OTPCode:     "123456",
		NewPassword: "N3w$ecret!",
	})

	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestCurrentAccountResolvesAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Verify", ctx, "access", jwt.KindAccess).Return(&jwt.SessionClaims{
		AccountID: 7,
		Kind:      jwt.KindAccess,
	}, nil)
	f.accounts.On("GetByID", ctx, int64(7)).Return(&models.Account{ID: 7, Email: "a@example.com"}, nil)

	account, err := f.service.CurrentAccount(ctx, "access")

	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
}

func TestCurrentAccountRejectsBadToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Verify", ctx, "garbage", jwt.KindAccess).Return(nil, jwt.ErrMalformedToken)

	_, err := f.service.CurrentAccount(ctx, "garbage")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCurrentAccountRejectsDeletedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokens.On("Verify", ctx, "access", jwt.KindAccess).Return(&jwt.SessionClaims{
		AccountID: 7,
		Kind:      jwt.KindAccess,
	}, nil)
	f.accounts.On("GetByID", ctx, int64(7)).Return(nil, apperrors.NotFoundError("account"))

	_, err := f.service.CurrentAccount(ctx, "access")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
