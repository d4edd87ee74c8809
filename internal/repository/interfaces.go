package repository

import (
	"context"
	"time"

	"github.com/prism-worklet/prism-api/internal/models"
)

// AccountRepositoryInterface defines credential store operations.
type AccountRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, email, newHash string) error
	SetResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) error
	ClearResetChallenge(ctx context.Context, email string) error
}

// MentorRepositoryInterface defines mentor data access operations.
type MentorRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.Mentor, error)
	GetByID(ctx context.Context, id int64) (*models.Mentor, error)
	Create(ctx context.Context, mentor *models.Mentor) error
	Update(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error)
	UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// WorkletRepositoryInterface defines worklet data access operations.
type WorkletRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.Worklet, error)
	GetByID(ctx context.Context, id int64) (*models.Worklet, error)
	Create(ctx context.Context, worklet *models.Worklet) error
	Update(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error)
	Delete(ctx context.Context, id int64) error
}
