package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/repository"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/logger"
)

// WorkletService manages worklets and their mentor assignments.
type WorkletService struct {
	worklets repository.WorkletRepositoryInterface
	mentors  repository.MentorRepositoryInterface
}

func NewWorkletService(worklets repository.WorkletRepositoryInterface, mentors repository.MentorRepositoryInterface) *WorkletService {
	return &WorkletService{
		worklets: worklets,
		mentors:  mentors,
	}
}

func (s *WorkletService) GetAll(ctx context.Context) ([]*models.Worklet, error) {
	return s.worklets.GetAll(ctx)
}

func (s *WorkletService) GetByID(ctx context.Context, id int64) (*models.Worklet, error) {
	return s.worklets.GetByID(ctx, id)
}

// Create stores a new worklet. The assigned mentor must exist.
func (s *WorkletService) Create(ctx context.Context, req *models.CreateWorkletRequest) (*models.Worklet, error) {
	if err := s.requireMentor(ctx, req.MentorID); err != nil {
		return nil, err
	}

	status := models.WorkletStatus(req.Status)
	if status == "" {
		status = models.WorkletStatusDraft
	}

	worklet := &models.Worklet{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		MentorID:    req.MentorID,
	}

	if err := s.worklets.Create(ctx, worklet); err != nil {
		return nil, err
	}

	logger.Info("Worklet created",
		zap.Int64("worklet_id", worklet.ID),
		zap.Int64("mentor_id", worklet.MentorID))

	return worklet, nil
}

// Update edits a worklet. A mentor reassignment is checked against the
// mentor directory first.
func (s *WorkletService) Update(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error) {
	if req.MentorID != nil {
		if err := s.requireMentor(ctx, *req.MentorID); err != nil {
			return nil, err
		}
	}

	return s.worklets.Update(ctx, id, req)
}

func (s *WorkletService) Delete(ctx context.Context, id int64) error {
	if err := s.worklets.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Worklet deleted", zap.Int64("worklet_id", id))
	return nil
}

func (s *WorkletService) requireMentor(ctx context.Context, mentorID int64) error {
	exists, err := s.mentors.Exists(ctx, mentorID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFoundError("mentor")
	}
	return nil
}
