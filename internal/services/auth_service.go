package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/repository"
	"github.com/prism-worklet/prism-api/internal/store"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/jwt"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
	"github.com/prism-worklet/prism-api/pkg/otp"
)

// PendingSignupStore is the shared pending-registration cache.
type PendingSignupStore interface {
	Put(ctx context.Context, email, otp string) error
	Get(ctx context.Context, email string) (*store.PendingSignup, error)
	MarkVerified(ctx context.Context, email string) error
	Pop(ctx context.Context, email string) (*store.PendingSignup, error)
}

// SessionTokenManager issues and retires session tokens.
type SessionTokenManager interface {
	IssuePair(ctx context.Context, email, role string, accountID int64) (*jwt.TokenPair, error)
	Verify(ctx context.Context, tokenString, expectedKind string) (*jwt.SessionClaims, error)
	Revoke(ctx context.Context, tokenString string) error
	Rotate(ctx context.Context, oldRefresh string) (*jwt.TokenPair, error)
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// MailDispatcher queues outbound mail without blocking the request.
type MailDispatcher interface {
	EnqueueVerification(email, name, code string)
	EnqueuePasswordReset(email, name, code string)
}

// AuthService composes the signup, login and password reset flows.
type AuthService struct {
	accounts repository.AccountRepositoryInterface
	pending  PendingSignupStore
	tokens   SessionTokenManager
	hasher   PasswordHasher
	mail     MailDispatcher
	otpTTL   time.Duration

	// dummyHash keeps the password check on a login miss the same
	// latency class as a real comparison.
	dummyHash string
}

// NewAuthService creates the auth flow orchestrator.
func NewAuthService(
	accounts repository.AccountRepositoryInterface,
	pending PendingSignupStore,
	tokens SessionTokenManager,
	hasher PasswordHasher,
	mail MailDispatcher,
	otpTTL time.Duration,
) (*AuthService, error) {
	dummyHash, err := hasher.Hash("prism-placeholder-credential")
	if err != nil {
		return nil, err
	}

	return &AuthService{
		accounts:  accounts,
		pending:   pending,
		tokens:    tokens,
		hasher:    hasher,
		mail:      mail,
		otpTTL:    otpTTL,
		dummyHash: dummyHash,
	}, nil
}

// RequestOTP starts signup: rejects identities that already have an
// account, overwrites any pending registration with a fresh code and
// queues the verification mail.
func (s *AuthService) RequestOTP(ctx context.Context, req *models.RequestOTPRequest) error {
	_, err := s.accounts.GetByEmail(ctx, req.Email)
	if err == nil {
		metrics.SignupOTPRequests.WithLabelValues("conflict").Inc()
		return apperrors.ConflictError("account already exists")
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		metrics.SignupOTPRequests.WithLabelValues("error").Inc()
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		metrics.SignupOTPRequests.WithLabelValues("error").Inc()
		return apperrors.InternalError("generate otp")
	}

	if err := s.pending.Put(ctx, req.Email, code); err != nil {
		metrics.SignupOTPRequests.WithLabelValues("error").Inc()
		return err
	}

	s.mail.EnqueueVerification(req.Email, req.Name, code)

	metrics.SignupOTPRequests.WithLabelValues("success").Inc()
	logger.Info("Signup OTP issued", zap.String("email", req.Email))

	return nil
}

// VerifyOTP checks the emailed code against the pending registration.
// A missing record, a wrong code and an expired code are reported in
// that order.
func (s *AuthService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) error {
	record, err := s.pending.Get(ctx, req.Email)
	if err != nil {
		metrics.SignupOTPVerifications.WithLabelValues("not_found").Inc()
		return err
	}

	if !jwt.TimingSafeCompare(record.OTP, req.OTPCode) {
		metrics.SignupOTPVerifications.WithLabelValues("invalid").Inc()
		return apperrors.InvalidError("otp code")
	}

	if record.Expired(time.Now()) {
		metrics.SignupOTPVerifications.WithLabelValues("expired").Inc()
		return apperrors.ExpiredError("otp code")
	}

	if err := s.pending.MarkVerified(ctx, req.Email); err != nil {
		metrics.SignupOTPVerifications.WithLabelValues("error").Inc()
		return err
	}

	metrics.SignupOTPVerifications.WithLabelValues("success").Inc()
	return nil
}

// SetPassword completes signup. The pending registration must exist and
// be verified; the account must not exist yet. The pending record is
// consumed on success.
func (s *AuthService) SetPassword(ctx context.Context, req *models.SetPasswordRequest) (*models.Account, error) {
	record, err := s.pending.Get(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidState
		}
		return nil, err
	}
	if !record.Verified {
		return nil, apperrors.ErrInvalidState
	}

	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ConflictError("account already exists")
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("hash password")
	}

	account := &models.Account{
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.Role(req.Role),
		PasswordHash: hash,
		IsVerified:   true,
	}

	// The unique constraint on email decides the winner of a concurrent
	// signup race; the loser sees ErrConflict here.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	// Consume the pending registration. A concurrent consumer having
	// beaten us to it is fine, the account row already exists.
	if _, err := s.pending.Pop(ctx, req.Email); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("Failed to consume pending signup",
			zap.String("email", req.Email),
			zap.Error(err))
	}

	metrics.AccountsCreated.WithLabelValues(req.Role).Inc()
	logger.Info("Account created",
		zap.Int64("account_id", account.ID),
		zap.String("role", req.Role))

	return account, nil
}

// Login authenticates by email, role and password and issues a token
// pair. A wrong role is indistinguishable from a wrong password: the
// lookup key includes the role, and a miss still burns a hash check.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*jwt.TokenPair, error) {
	account, err := s.accounts.GetByEmailAndRole(ctx, req.Email, models.Role(req.Role))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			s.hasher.Verify(req.Password, s.dummyHash)
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			return nil, apperrors.InvalidError("credentials")
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	if !account.IsVerified || !s.hasher.Verify(req.Password, account.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidError("credentials")
	}

	pair, err := s.tokens.IssuePair(ctx, account.Email, string(account.Role), account.ID)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("Login successful", zap.Int64("account_id", account.ID))

	return pair, nil
}

// Refresh rotates a refresh token for a new pair. The old token becomes
// permanently invalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		metrics.TokenRotations.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.TokenRotations.WithLabelValues("success").Inc()
	return pair, nil
}

// Logout revokes the session tokens. Revoking garbage is harmless, so
// logout never fails on a bad token.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.tokens.Revoke(ctx, accessToken); err != nil {
			return err
		}
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

// ForgotPassword stores a reset challenge and queues the reset mail.
// The response is identical whether or not the account exists, so the
// endpoint cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		return apperrors.InternalError("generate otp")
	}

	if err := s.accounts.SetResetChallenge(ctx, email, code, time.Now().Add(s.otpTTL)); err != nil {
		return err
	}

	s.mail.EnqueuePasswordReset(email, account.Name, code)

	metrics.PasswordResets.WithLabelValues("requested").Inc()
	logger.Info("Password reset challenge issued", zap.Int64("account_id", account.ID))

	return nil
}

// ResetPassword sets a new password when the reset challenge matches.
func (s *AuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		metrics.PasswordResets.WithLabelValues("not_found").Inc()
		return err
	}

	if account.ResetOTPCode == nil || !jwt.TimingSafeCompare(*account.ResetOTPCode, req.OTPCode) {
		metrics.PasswordResets.WithLabelValues("invalid").Inc()
		return apperrors.InvalidError("otp code")
	}

	if account.ResetOTPExpiresAt == nil || time.Now().After(*account.ResetOTPExpiresAt) {
		metrics.PasswordResets.WithLabelValues("expired").Inc()
		return apperrors.ExpiredError("otp code")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.InternalError("hash password")
	}

	if err := s.accounts.UpdatePassword(ctx, req.Email, hash); err != nil {
		return err
	}

	if err := s.accounts.ClearResetChallenge(ctx, req.Email); err != nil {
		logger.Warn("Failed to clear reset challenge",
			zap.Int64("account_id", account.ID),
			zap.Error(err))
	}

	metrics.PasswordResets.WithLabelValues("completed").Inc()
	logger.Info("Password reset completed", zap.Int64("account_id", account.ID))

	return nil
}

// CurrentAccount resolves a bearer access token to its account.
func (s *AuthService) CurrentAccount(ctx context.Context, accessToken string) (*models.Account, error) {
	claims, err := s.tokens.Verify(ctx, accessToken, jwt.KindAccess)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	return account, nil
}
