package repository

import (
	"context"
	"time"

	"github.com/prism-worklet/prism-api/internal/database/postgres"
	"github.com/prism-worklet/prism-api/internal/models"
)

// AccountRepository is the PostgreSQL-backed credential store.
type AccountRepository struct {
	db *postgres.Client
}

func NewAccountRepository(db *postgres.Client) AccountRepositoryInterface {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.db.GetAccountByEmail(ctx, email)
}

func (r *AccountRepository) GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	return r.db.GetAccountByEmailAndRole(ctx, email, role)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.db.GetAccountByID(ctx, id)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.CreateAccount(ctx, account)
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, email, newHash string) error {
	return r.db.UpdateAccountPassword(ctx, email, newHash)
}

func (r *AccountRepository) SetResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) error {
	return r.db.SetResetChallenge(ctx, email, code, expiresAt)
}

func (r *AccountRepository) ClearResetChallenge(ctx context.Context, email string) error {
	return r.db.ClearResetChallenge(ctx, email)
}
