package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/store"
	"github.com/prism-worklet/prism-api/pkg/jwt"
)

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, email, newHash string) error {
	args := m.Called(ctx, email, newHash)
	return args.Error(0)
}

func (m *mockAccountRepository) SetResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) error {
	args := m.Called(ctx, email, code, expiresAt)
	return args.Error(0)
}

func (m *mockAccountRepository) ClearResetChallenge(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockPendingStore struct {
	mock.Mock
}

func (m *mockPendingStore) Put(ctx context.Context, email, otp string) error {
	args := m.Called(ctx, email, otp)
	return args.Error(0)
}

func (m *mockPendingStore) Get(ctx context.Context, email string) (*store.PendingSignup, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PendingSignup), args.Error(1)
}

func (m *mockPendingStore) MarkVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockPendingStore) Pop(ctx context.Context, email string) (*store.PendingSignup, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PendingSignup), args.Error(1)
}

type mockTokenManager struct {
	mock.Mock
}

func (m *mockTokenManager) IssuePair(ctx context.Context, email, role string, accountID int64) (*jwt.TokenPair, error) {
	args := m.Called(ctx, email, role, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.TokenPair), args.Error(1)
}

func (m *mockTokenManager) Verify(ctx context.Context, tokenString, expectedKind string) (*jwt.SessionClaims, error) {
	args := m.Called(ctx, tokenString, expectedKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.SessionClaims), args.Error(1)
}

func (m *mockTokenManager) Revoke(ctx context.Context, tokenString string) error {
	args := m.Called(ctx, tokenString)
	return args.Error(0)
}

func (m *mockTokenManager) Rotate(ctx context.Context, oldRefresh string) (*jwt.TokenPair, error) {
	args := m.Called(ctx, oldRefresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.TokenPair), args.Error(1)
}

type mockMailDispatcher struct {
	mock.Mock
}

func (m *mockMailDispatcher) EnqueueVerification(email, name, code string) {
	m.Called(email, name, code)
}

func (m *mockMailDispatcher) EnqueuePasswordReset(email, name, code string) {
	m.Called(email, name, code)
}

type mockMentorRepository struct {
	mock.Mock
}

func (m *mockMentorRepository) GetAll(ctx context.Context) ([]*models.Mentor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Mentor), args.Error(1)
}

func (m *mockMentorRepository) GetByID(ctx context.Context, id int64) (*models.Mentor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentor), args.Error(1)
}

func (m *mockMentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	args := m.Called(ctx, mentor)
	return args.Error(0)
}

func (m *mockMentorRepository) Update(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentor), args.Error(1)
}

func (m *mockMentorRepository) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	args := m.Called(ctx, id, photoURL)
	return args.Error(0)
}

func (m *mockMentorRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMentorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockWorkletRepository struct {
	mock.Mock
}

func (m *mockWorkletRepository) GetAll(ctx context.Context) ([]*models.Worklet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Worklet), args.Error(1)
}

func (m *mockWorkletRepository) GetByID(ctx context.Context, id int64) (*models.Worklet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Worklet), args.Error(1)
}

func (m *mockWorkletRepository) Create(ctx context.Context, worklet *models.Worklet) error {
	args := m.Called(ctx, worklet)
	return args.Error(0)
}

func (m *mockWorkletRepository) Update(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Worklet), args.Error(1)
}

func (m *mockWorkletRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPhotoStorage struct {
	mock.Mock
}

func (m *mockPhotoStorage) UploadPhoto(ctx context.Context, imageData, key, contentType string) (string, error) {
	args := m.Called(ctx, imageData, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockPhotoStorage) ValidateImageType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *mockPhotoStorage) ValidateImageSize(imageData string) error {
	args := m.Called(imageData)
	return args.Error(0)
}
