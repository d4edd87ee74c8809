package repository

import (
	"context"

	"github.com/prism-worklet/prism-api/internal/cache"
	"github.com/prism-worklet/prism-api/internal/database/postgres"
	"github.com/prism-worklet/prism-api/internal/models"
)

// MentorRepository serves mentor reads through the in-memory cache and
// writes through to PostgreSQL. A nil cache (disabled by config) reads
// straight from the database.
type MentorRepository struct {
	db          *postgres.Client
	mentorCache *cache.MentorCache
}

func NewMentorRepository(db *postgres.Client, mentorCache *cache.MentorCache) MentorRepositoryInterface {
	return &MentorRepository{db: db, mentorCache: mentorCache}
}

func (r *MentorRepository) GetAll(ctx context.Context) ([]*models.Mentor, error) {
	if r.mentorCache != nil && r.mentorCache.IsReady() {
		return r.mentorCache.Get()
	}
	return r.db.GetAllMentors(ctx)
}

func (r *MentorRepository) GetByID(ctx context.Context, id int64) (*models.Mentor, error) {
	if r.mentorCache != nil {
		if mentor, ok := r.mentorCache.GetByID(id); ok {
			return mentor, nil
		}
	}
	return r.db.GetMentorByID(ctx, id)
}

func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if err := r.db.CreateMentor(ctx, mentor); err != nil {
		return err
	}
	r.refreshCacheEntry(ctx, mentor.ID)
	return nil
}

func (r *MentorRepository) Update(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error) {
	mentor, err := r.db.UpdateMentor(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.refreshCacheEntry(ctx, id)
	return mentor, nil
}

func (r *MentorRepository) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	if err := r.db.UpdateMentorPhotoURL(ctx, id, photoURL); err != nil {
		return err
	}
	r.refreshCacheEntry(ctx, id)
	return nil
}

func (r *MentorRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.DeleteMentor(ctx, id); err != nil {
		return err
	}
	if r.mentorCache != nil {
		r.mentorCache.RemoveMentor(id)
	}
	return nil
}

func (r *MentorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if r.mentorCache != nil {
		if _, ok := r.mentorCache.GetByID(id); ok {
			return true, nil
		}
	}
	return r.db.MentorExists(ctx, id)
}

// refreshCacheEntry keeps the cache in step with a write. Failures are
// logged inside the cache and not surfaced; the periodic refresh will
// converge.
func (r *MentorRepository) refreshCacheEntry(ctx context.Context, id int64) {
	if r.mentorCache == nil {
		return
	}
	_ = r.mentorCache.UpdateMentor(ctx, id)
}
