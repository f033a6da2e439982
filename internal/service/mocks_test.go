package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"devdir/internal/model"
	"devdir/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockDeveloperRepository is a mock implementation of DeveloperRepository.
type MockDeveloperRepository struct {
	mock.Mock
}

func (m *MockDeveloperRepository) Create(ctx context.Context, developer *model.Developer) error {
	args := m.Called(ctx, developer)
	return args.Error(0)
}

func (m *MockDeveloperRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Developer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Developer), args.Error(1)
}

func (m *MockDeveloperRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Developer, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Developer), args.Error(1)
}

func (m *MockDeveloperRepository) List(ctx context.Context, filter repository.DeveloperFilter) ([]model.Developer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Developer), args.Error(1)
}

// MockContactLedger is a mock implementation of ContactLedger.
// WithTransaction runs fn against the mock itself.
type MockContactLedger struct {
	mock.Mock
}

func (m *MockContactLedger) TryRecordView(ctx context.Context, viewerID, developerID uuid.UUID, day string) (bool, error) {
	args := m.Called(ctx, viewerID, developerID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactLedger) CountDistinctDevelopers(ctx context.Context, viewerID uuid.UUID, day string) (int, error) {
	args := m.Called(ctx, viewerID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockContactLedger) HasViewed(ctx context.Context, viewerID, developerID uuid.UUID, day string) (bool, error) {
	args := m.Called(ctx, viewerID, developerID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactLedger) LockViewer(ctx context.Context, viewerID uuid.UUID) error {
	args := m.Called(ctx, viewerID)
	return args.Error(0)
}

func (m *MockContactLedger) WithTransaction(ctx context.Context, fn func(ctx context.Context, ledger repository.ContactLedger) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, role model.Role, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, role, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, model.Role, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Get(1).(model.Role), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
