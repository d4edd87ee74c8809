package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
)

const accountColumns = `
	id, name, email, role, password_hash, is_verified,
	reset_otp_code, reset_otp_expires_at, created_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Role, &a.PasswordHash, &a.IsVerified,
		&a.ResetOTPCode, &a.ResetOTPExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccountByEmail fetches an account by email
func (c *Client) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	start := time.Now()
	operation := "getAccountByEmail"

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, accountColumns)

	account, err := scanAccount(c.pool.QueryRow(ctx, query, email))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("account")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return account, nil
}

// GetAccountByEmailAndRole fetches an account by email and role. Login
// lookups go through here so a wrong role behaves like a missing account.
func (c *Client) GetAccountByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	start := time.Now()
	operation := "getAccountByEmailAndRole"

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1 AND role = $2`, accountColumns)

	account, err := scanAccount(c.pool.QueryRow(ctx, query, email, role))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("account")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return account, nil
}

// GetAccountByID fetches an account by primary key
func (c *Client) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	start := time.Now()
	operation := "getAccountByID"

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)

	account, err := scanAccount(c.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("account")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return account, nil
}

// CreateAccount inserts a new account and fills in its id and created_at.
// A duplicate email maps to ErrConflict.
func (c *Client) CreateAccount(ctx context.Context, account *models.Account) error {
	start := time.Now()
	operation := "createAccount"

	query := `
		INSERT INTO accounts (name, email, role, password_hash, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := c.pool.QueryRow(ctx, query,
		account.Name, account.Email, account.Role, account.PasswordHash, account.IsVerified,
	).Scan(&account.ID, &account.CreatedAt)

	duration := metrics.MeasureDuration(start)

	if isUniqueViolation(err) {
		recordMetrics(operation, "conflict", duration)
		return apperrors.ConflictError("account already exists")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create account: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.Int64("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)

	return nil
}

// UpdateAccountPassword replaces the stored password hash
func (c *Client) UpdateAccountPassword(ctx context.Context, email, newHash string) error {
	start := time.Now()
	operation := "updateAccountPassword"

	tag, err := c.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE email = $1`,
		email, newHash,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "success", duration)
		return apperrors.NotFoundError("account")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// SetResetChallenge stores a password reset code and its expiry on the account
func (c *Client) SetResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) error {
	start := time.Now()
	operation := "setResetChallenge"

	tag, err := c.pool.Exec(ctx,
		`UPDATE accounts SET reset_otp_code = $2, reset_otp_expires_at = $3 WHERE email = $1`,
		email, code, expiresAt,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to set reset challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "success", duration)
		return apperrors.NotFoundError("account")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// ClearResetChallenge removes any pending password reset code
func (c *Client) ClearResetChallenge(ctx context.Context, email string) error {
	start := time.Now()
	operation := "clearResetChallenge"

	_, err := c.pool.Exec(ctx,
		`UPDATE accounts SET reset_otp_code = NULL, reset_otp_expires_at = NULL WHERE email = $1`,
		email,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to clear reset challenge: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}
