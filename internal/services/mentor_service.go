package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/repository"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/logger"
)

// PhotoStorage uploads mentor profile photos to object storage.
type PhotoStorage interface {
	UploadPhoto(ctx context.Context, imageData, key, contentType string) (string, error)
	ValidateImageType(contentType string) error
	ValidateImageSize(imageData string) error
}

// MentorService manages the mentor directory.
type MentorService struct {
	mentors repository.MentorRepositoryInterface
	photos  PhotoStorage
}

// NewMentorService creates a mentor service. The photo storage is
// optional; without it photo uploads are rejected.
func NewMentorService(mentors repository.MentorRepositoryInterface, photos PhotoStorage) *MentorService {
	return &MentorService{
		mentors: mentors,
		photos:  photos,
	}
}

func (s *MentorService) GetAll(ctx context.Context) ([]*models.Mentor, error) {
	return s.mentors.GetAll(ctx)
}

func (s *MentorService) GetByID(ctx context.Context, id int64) (*models.Mentor, error) {
	return s.mentors.GetByID(ctx, id)
}

// Create registers a new mentor. New mentors start active.
func (s *MentorService) Create(ctx context.Context, req *models.CreateMentorRequest) (*models.Mentor, error) {
	mentor := &models.Mentor{
		Name:      req.Name,
		Email:     req.Email,
		Contact:   req.Contact,
		Team:      req.Team,
		Expertise: req.Expertise,
		IsActive:  true,
	}

	if err := s.mentors.Create(ctx, mentor); err != nil {
		return nil, err
	}

	logger.Info("Mentor created",
		zap.Int64("mentor_id", mentor.ID),
		zap.String("team", mentor.Team))

	return mentor, nil
}

func (s *MentorService) Update(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error) {
	return s.mentors.Update(ctx, id, req)
}

// UploadPhoto validates and stores a profile photo, then records its
// public URL on the mentor.
func (s *MentorService) UploadPhoto(ctx context.Context, id int64, req *models.UploadMentorPhotoRequest) (string, error) {
	if s.photos == nil {
		return "", apperrors.UnavailableError("object storage", errors.New("not configured"))
	}

	if _, err := s.mentors.GetByID(ctx, id); err != nil {
		return "", err
	}

	if err := s.photos.ValidateImageType(req.ContentType); err != nil {
		return "", apperrors.InvalidInputError("content_type", err.Error())
	}
	if err := s.photos.ValidateImageSize(req.ImageData); err != nil {
		return "", apperrors.InvalidInputError("image_data", err.Error())
	}

	key := fmt.Sprintf("mentors/%d%s", id, extensionFor(req.ContentType))

	url, err := s.photos.UploadPhoto(ctx, req.ImageData, key, req.ContentType)
	if err != nil {
		return "", err
	}

	if err := s.mentors.UpdatePhotoURL(ctx, id, url); err != nil {
		return "", err
	}

	logger.Info("Mentor photo uploaded", zap.Int64("mentor_id", id))

	return url, nil
}

func (s *MentorService) Delete(ctx context.Context, id int64) error {
	if err := s.mentors.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Mentor deleted", zap.Int64("mentor_id", id))
	return nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
