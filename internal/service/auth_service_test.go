package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"authsvc/internal/auth"
	"authsvc/internal/model"
	"authsvc/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
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

func (m *MockUserRepository) FindBySessionToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func newService(repo *MockUserRepository) AuthService {
	return NewAuthService(repo, auth.NewBcryptHasher(), auth.NewUUIDGenerator(), nil)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email already registered",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newService(mockRepo)
			user, err := svc.Register(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.HashedPassword)
				assert.NotEqual(t, tt.password, user.HashedPassword)
				assert.True(t, auth.NewBcryptHasher().Verify(tt.password, user.HashedPassword))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_DoesNotCreateOnConflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)

	svc := newService(mockRepo)
	_, err := svc.Register(context.Background(), "existing@example.com", "password123")

	assert.Equal(t, ErrAlreadyRegistered, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_ValidLogin(t *testing.T) {
	hasher := auth.NewBcryptHasher()
	hashed, err := hasher.Hash("correct-password")
	assert.NoError(t, err)

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockUserRepository)
		expected  bool
	}{
		{
			name:     "correct password",
			email:    "test@example.com",
			password: "correct-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:             1,
					Email:          "test@example.com",
					HashedPassword: hashed,
				}, nil)
			},
			expected: true,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:             1,
					Email:          "test@example.com",
					HashedPassword: hashed,
				}, nil)
			},
			expected: false,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "anything",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newService(mockRepo)
			ok, err := svc.ValidLogin(context.Background(), tt.email, tt.password)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_CreateSession(t *testing.T) {
	t.Run("unknown email yields empty token without error", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		token, err := svc.CreateSession(context.Background(), "nobody@example.com")

		assert.NoError(t, err)
		assert.Empty(t, token)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known email stores and returns a fresh token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
			ID:    1,
			Email: "test@example.com",
		}, nil)

		var stored string
		mockRepo.On("Update", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
			token, ok := fields["session_token"].(string)
			if ok {
				stored = token
			}
			return ok && token != ""
		})).Return(nil)

		svc := newService(mockRepo)
		token, err := svc.CreateSession(context.Background(), "test@example.com")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, token, stored)
		mockRepo.AssertExpectations(t)
	})

	t.Run("issued tokens are distinct", func(t *testing.T) {
		prev := "11111111-1111-1111-1111-111111111111"
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
			ID:           1,
			Email:        "test@example.com",
			SessionToken: &prev,
		}, nil)
		mockRepo.On("Update", mock.Anything, uint(1), mock.Anything).Return(nil)

		svc := newService(mockRepo)
		first, err := svc.CreateSession(context.Background(), "test@example.com")
		assert.NoError(t, err)
		second, err := svc.CreateSession(context.Background(), "test@example.com")
		assert.NoError(t, err)

		assert.NotEmpty(t, first)
		assert.NotEmpty(t, second)
		assert.NotEqual(t, first, second)
		assert.NotEqual(t, prev, first)
	})
}

func TestAuthService_UserFromSessionToken(t *testing.T) {
	t.Run("empty token short-circuits without a lookup", func(t *testing.T) {
		mockRepo := new(MockUserRepository)

		svc := newService(mockRepo)
		user, err := svc.UserFromSessionToken(context.Background(), "")

		assert.NoError(t, err)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "FindBySessionToken", mock.Anything, mock.Anything)
	})

	t.Run("known token resolves to its user", func(t *testing.T) {
		token := "22222222-2222-2222-2222-222222222222"
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindBySessionToken", mock.Anything, token).Return(&model.User{
			ID:           1,
			Email:        "test@example.com",
			SessionToken: &token,
		}, nil)

		svc := newService(mockRepo)
		user, err := svc.UserFromSessionToken(context.Background(), token)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown token resolves to nil without error", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindBySessionToken", mock.Anything, "unknown").Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		user, err := svc.UserFromSessionToken(context.Background(), "unknown")

		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestAuthService_DestroySession(t *testing.T) {
	t.Run("zero id is a no-op", func(t *testing.T) {
		mockRepo := new(MockUserRepository)

		svc := newService(mockRepo)
		err := svc.DestroySession(context.Background(), 0)

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user is a no-op", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		err := svc.DestroySession(context.Background(), 42)

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clears the session token", func(t *testing.T) {
		token := "33333333-3333-3333-3333-333333333333"
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
			ID:           1,
			Email:        "test@example.com",
			SessionToken: &token,
		}, nil)
		mockRepo.On("Update", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
			v, present := fields["session_token"]
			return present && v == nil
		})).Return(nil)

		svc := newService(mockRepo)
		err := svc.DestroySession(context.Background(), 1)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("destroying twice is safe", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		// second call: token already cleared
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
			ID:    1,
			Email: "test@example.com",
		}, nil)
		mockRepo.On("Update", mock.Anything, uint(1), mock.Anything).Return(nil)

		svc := newService(mockRepo)
		assert.NoError(t, svc.DestroySession(context.Background(), 1))
		assert.NoError(t, svc.DestroySession(context.Background(), 1))
	})
}

func TestAuthService_ResetPasswordToken(t *testing.T) {
	t.Run("unknown email fails", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		token, err := svc.ResetPasswordToken(context.Background(), "nobody@example.com")

		assert.Equal(t, ErrUserNotFound, err)
		assert.Empty(t, token)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known email gets a fresh stored token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
			ID:    1,
			Email: "test@example.com",
		}, nil)
		mockRepo.On("Update", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
			token, ok := fields["reset_token"].(string)
			return ok && token != ""
		})).Return(nil)

		svc := newService(mockRepo)
		token, err := svc.ResetPasswordToken(context.Background(), "test@example.com")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_UpdatePassword(t *testing.T) {
	t.Run("empty arguments are silent no-ops", func(t *testing.T) {
		mockRepo := new(MockUserRepository)

		svc := newService(mockRepo)
		assert.NoError(t, svc.UpdatePassword(context.Background(), "", "new-password"))
		assert.NoError(t, svc.UpdatePassword(context.Background(), "some-token", ""))

		mockRepo.AssertNotCalled(t, "FindByResetToken", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByResetToken", mock.Anything, "bogus").Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		err := svc.UpdatePassword(context.Background(), "bogus", "new-password")

		assert.Equal(t, ErrInvalidResetToken, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores the new hash and clears the token in one update", func(t *testing.T) {
		hasher := auth.NewBcryptHasher()
		oldHash, err := hasher.Hash("old-password")
		assert.NoError(t, err)

		token := "44444444-4444-4444-4444-444444444444"
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByResetToken", mock.Anything, token).Return(&model.User{
			ID:             1,
			Email:          "test@example.com",
			HashedPassword: oldHash,
			ResetToken:     &token,
		}, nil)

		var storedHash string
		mockRepo.On("Update", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
			hash, ok := fields["hashed_password"].(string)
			if !ok {
				return false
			}
			storedHash = hash
			cleared, present := fields["reset_token"]
			return present && cleared == nil
		})).Return(nil)

		svc := newService(mockRepo)
		err = svc.UpdatePassword(context.Background(), token, "new-password")

		assert.NoError(t, err)
		assert.True(t, hasher.Verify("new-password", storedHash))
		assert.False(t, hasher.Verify("old-password", storedHash))
		mockRepo.AssertExpectations(t)
	})

	t.Run("a consumed token no longer resolves", func(t *testing.T) {
		token := "55555555-5555-5555-5555-555555555555"
		mockRepo := new(MockUserRepository)
		// token was cleared by the first update
		mockRepo.On("FindByResetToken", mock.Anything, token).Return(nil, repository.ErrNotFound)

		svc := newService(mockRepo)
		err := svc.UpdatePassword(context.Background(), token, "another-password")

		assert.Equal(t, ErrInvalidResetToken, err)
	})
}
