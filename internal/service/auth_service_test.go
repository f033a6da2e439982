package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devdir/internal/auth"
	domainerrors "devdir/internal/errors"
	"devdir/internal/identity"
	"devdir/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "successful student registration",
			email:     "test@example.com",
			password:  "password123",
			nameField: "Test User",
			role:      model.RoleStudent,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:      "email is normalized",
			email:     "  HR@Acme.io ",
			password:  "password123",
			nameField: "Acme",
			role:      model.RoleCompany,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "hr@acme.io").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:      "user already exists",
			email:     "existing@example.com",
			password:  "password123",
			nameField: "Existing User",
			role:      model.RoleStudent,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:      "duplicate on insert",
			email:     "race@example.com",
			password:  "password123",
			nameField: "Race",
			role:      model.RoleCompany,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:          "admin cannot self-register",
			email:         "root@example.com",
			password:      "password123",
			nameField:     "Root",
			role:          model.RoleAdmin,
			setupMock:     func(m *MockUserRepository) {},
			expectedError: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			mockTokenStore := new(MockTokenStore)

			service := NewAuthService(mockRepo, jwtService, mockTokenStore)
			user, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.Equal(t, tt.role, user.Role)
				assert.Equal(t, tt.nameField, user.Name)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	userID := uuid.New()
	existing := &model.User{
		ID:           userID,
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		Role:         model.RoleCompany,
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, model.RoleCompany, auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockTokenStore)

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, refreshToken)
				assert.Equal(t, tt.email, user.Email)

				claims, err := jwtService.ValidateAccessToken(accessToken)
				require.NoError(t, err)
				assert.Equal(t, userID.String(), claims.UserID)
				assert.Equal(t, model.RoleCompany, claims.Role)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()
	tokenID, refresh, err := jwtService.GenerateRefreshToken(userID, model.RoleStudent)
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken(userID, model.RoleStudent)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, model.RoleStudent, nil)

		newAccess, err := NewAuthService(new(MockUserRepository), jwtService, store).RefreshToken(context.Background(), refresh)
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, model.RoleStudent, claims.Role)
	})

	t.Run("revoked", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, model.Role(""), assert.AnError)

		_, err := NewAuthService(new(MockUserRepository), jwtService, store).RefreshToken(context.Background(), refresh)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("role changed since issue", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, model.RoleCompany, nil)

		_, err := NewAuthService(new(MockUserRepository), jwtService, store).RefreshToken(context.Background(), refresh)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		store := new(MockTokenStore)

		_, err := NewAuthService(new(MockUserRepository), jwtService, store).RefreshToken(context.Background(), access)
		assert.Equal(t, ErrInvalidRefreshToken, err)
		store.AssertNotCalled(t, "GetRefreshToken", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()
	refreshID, refresh, err := jwtService.GenerateRefreshToken(userID, model.RoleCompany)
	require.NoError(t, err)
	accessID, access, err := jwtService.GenerateAccessToken(userID, model.RoleCompany)
	require.NoError(t, err)

	t.Run("blacklists presented access token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("DeleteRefreshToken", mock.Anything, refreshID).Return(nil)
		store.On("BlacklistAccessToken", mock.Anything, accessID, mock.AnythingOfType("time.Duration")).Return(nil)

		err := NewAuthService(new(MockUserRepository), jwtService, store).Logout(context.Background(), refresh, access)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("refresh token only", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("DeleteRefreshToken", mock.Anything, refreshID).Return(nil)

		err := NewAuthService(new(MockUserRepository), jwtService, store).Logout(context.Background(), refresh, "")
		require.NoError(t, err)
		store.AssertNotCalled(t, "BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		err := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore)).Logout(context.Background(), "nope", access)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	userID := uuid.New()

	t.Run("authenticated", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Role: model.RoleAdmin}, nil)

		user, err := NewAuthService(repo, auth.NewJWTService("s"), new(MockTokenStore)).
			CurrentUser(context.Background(), identity.Authenticated(userID, model.RoleAdmin))
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("deleted user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		_, err := NewAuthService(repo, auth.NewJWTService("s"), new(MockTokenStore)).
			CurrentUser(context.Background(), identity.Authenticated(userID, model.RoleAdmin))
		assert.ErrorIs(t, err, domainerrors.ErrAuthenticationRequired)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := NewAuthService(new(MockUserRepository), auth.NewJWTService("s"), new(MockTokenStore)).
			CurrentUser(context.Background(), identity.Anonymous())
		assert.ErrorIs(t, err, domainerrors.ErrAuthenticationRequired)
	})
}
