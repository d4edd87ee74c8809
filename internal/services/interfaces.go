package services

import (
	"context"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/pkg/jwt"
)

// AuthServiceInterface defines the signup, session and password reset flows.
type AuthServiceInterface interface {
	RequestOTP(ctx context.Context, req *models.RequestOTPRequest) error
	VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) error
	SetPassword(ctx context.Context, req *models.SetPasswordRequest) (*models.Account, error)
	Login(ctx context.Context, req *models.LoginRequest) (*jwt.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	CurrentAccount(ctx context.Context, accessToken string) (*models.Account, error)
}

// MentorServiceInterface defines mentor directory operations.
type MentorServiceInterface interface {
	GetAll(ctx context.Context) ([]*models.Mentor, error)
	GetByID(ctx context.Context, id int64) (*models.Mentor, error)
	Create(ctx context.Context, req *models.CreateMentorRequest) (*models.Mentor, error)
	Update(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error)
	UploadPhoto(ctx context.Context, id int64, req *models.UploadMentorPhotoRequest) (string, error)
	Delete(ctx context.Context, id int64) error
}

// WorkletServiceInterface defines worklet operations.
type WorkletServiceInterface interface {
	GetAll(ctx context.Context) ([]*models.Worklet, error)
	GetByID(ctx context.Context, id int64) (*models.Worklet, error)
	Create(ctx context.Context, req *models.CreateWorkletRequest) (*models.Worklet, error)
	Update(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error)
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface checks.
var (
	_ AuthServiceInterface    = (*AuthService)(nil)
	_ MentorServiceInterface  = (*MentorService)(nil)
	_ WorkletServiceInterface = (*WorkletService)(nil)
)
