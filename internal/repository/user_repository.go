package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"authsvc/internal/model"
)

// ErrNotFound is returned when no user matches the queried field. It is the
// only miss signal repositories emit; the raw gorm error never leaves this
// package.
var ErrNotFound = errors.New("user not found")

// UserRepository defines persistence operations on user records.
// Each finder matches exactly one field.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindBySessionToken(ctx context.Context, token string) (*model.User, error)
	FindByResetToken(ctx context.Context, token string) (*model.User, error)
	// Update applies the given column values to the user row with the given
	// id. Passing nil as a value clears the column to NULL.
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindBySessionToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, "session_token = ?", token)
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, "reset_token = ?", token)
}

func (r *userRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
