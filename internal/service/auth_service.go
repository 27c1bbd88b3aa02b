package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authsvc/internal/auth"
	"authsvc/internal/cache"
	"authsvc/internal/model"
	"authsvc/internal/repository"
)

const (
	sessionCacheKeyPrefix = "session:"
	sessionCacheTTL       = 5 * time.Minute
)

var (
	// ErrAlreadyRegistered is returned when registering an email that exists.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrUserNotFound is returned when a reset token is requested for an
	// unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidResetToken is returned when a password update carries a token
	// that matches no user.
	ErrInvalidResetToken = errors.New("invalid reset token")
)

// AuthService orchestrates registration, credential verification, and the
// session and reset-token lifecycles. It holds no state of its own; all state
// lives in the user store.
//
// Lookup misses deliberately surface differently per operation: ValidLogin
// answers with a plain false, session lookups answer with nil, DestroySession
// and UpdatePassword with empty arguments are silent no-ops, and only
// Register, ResetPasswordToken, and UpdatePassword signal typed errors.
// Callers rely on these distinctions.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	ValidLogin(ctx context.Context, email, password string) (bool, error)
	CreateSession(ctx context.Context, email string) (string, error)
	UserFromSessionToken(ctx context.Context, token string) (*model.User, error)
	DestroySession(ctx context.Context, userID uint) error
	ResetPasswordToken(ctx context.Context, email string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens auth.TokenGenerator
	cache  *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens auth.TokenGenerator, cache *cache.Client) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		cache:  cache,
	}
}

// Register creates a new user with a hashed password. The email must not
// already be registered.
func (s *authService) Register(ctx context.Context, email, password string) (*model.User, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidLogin reports whether the credentials identify a registered user.
// An unknown email is an ordinary false, not an error. Never mutates state.
func (s *authService) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.hasher.Verify(password, user.HashedPassword), nil
}

// CreateSession issues a fresh session token for the user with the given
// email, overwriting any prior token. One live session per user: the previous
// token, if any, stops resolving. An unknown email yields an empty token with
// no error.
func (s *authService) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if user.SessionToken != nil {
		_ = s.cache.Delete(ctx, sessionCacheKeyPrefix+*user.SessionToken)
	}

	token := s.tokens.Generate()
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"session_token": token}); err != nil {
		return "", err
	}
	return token, nil
}

// UserFromSessionToken resolves a session token to its user. An empty token
// short-circuits to nil without touching the store; a miss is nil, not an
// error.
func (s *authService) UserFromSessionToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	if data, _ := s.cache.Get(ctx, sessionCacheKeyPrefix+token); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindBySessionToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, sessionCacheKeyPrefix+token, payload, sessionCacheTTL)
	}
	return user, nil
}

// DestroySession clears the user's session token. A zero id or an unknown
// user is a no-op; calling it twice is safe.
func (s *authService) DestroySession(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if user.SessionToken != nil {
		_ = s.cache.Delete(ctx, sessionCacheKeyPrefix+*user.SessionToken)
	}
	return s.users.Update(ctx, user.ID, map[string]interface{}{"session_token": nil})
}

// ResetPasswordToken issues a fresh single-use reset token for the email,
// overwriting any prior one. Unlike CreateSession, an unknown email here is a
// typed failure.
func (s *authService) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	token := s.tokens.Generate()
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"reset_token": token}); err != nil {
		return "", err
	}
	return token, nil
}

// UpdatePassword consumes a reset token: it stores the new password hash and
// clears the token in the same update. Empty arguments are a silent no-op;
// a token that matches no user is ErrInvalidResetToken.
func (s *authService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return nil
	}

	user, err := s.users.FindByResetToken(ctx, resetToken)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.Update(ctx, user.ID, map[string]interface{}{
		"hashed_password": hashed,
		"reset_token":     nil,
	})
}
