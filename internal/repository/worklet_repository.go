package repository

import (
	"context"

	"github.com/prism-worklet/prism-api/internal/database/postgres"
	"github.com/prism-worklet/prism-api/internal/models"
)

// WorkletRepository is the PostgreSQL-backed worklet store.
type WorkletRepository struct {
	db *postgres.Client
}

func NewWorkletRepository(db *postgres.Client) WorkletRepositoryInterface {
	return &WorkletRepository{db: db}
}

func (r *WorkletRepository) GetAll(ctx context.Context) ([]*models.Worklet, error) {
	return r.db.GetAllWorklets(ctx)
}

func (r *WorkletRepository) GetByID(ctx context.Context, id int64) (*models.Worklet, error) {
	return r.db.GetWorkletByID(ctx, id)
}

func (r *WorkletRepository) Create(ctx context.Context, worklet *models.Worklet) error {
	return r.db.CreateWorklet(ctx, worklet)
}

func (r *WorkletRepository) Update(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error) {
	return r.db.UpdateWorklet(ctx, id, req)
}

func (r *WorkletRepository) Delete(ctx context.Context, id int64) error {
	return r.db.DeleteWorklet(ctx, id)
}
