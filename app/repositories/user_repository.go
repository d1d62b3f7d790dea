package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

// UserRepository handles users and roles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

const profileColumns = "u.id, u.name, u.email, r.name AS role, u.created_at"

func (r *UserRepository) profiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("users u").
		Select(profileColumns).
		Joins("LEFT JOIN roles r ON r.id = u.role_id")
}

// EmailTaken reports whether a user with email exists.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// RoleID looks up a role by name. A missing role yields nil.
func (r *UserRepository) RoleID(ctx context.Context, name string) (*uint, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID == 0 {
		return nil, nil
	}
	return &role.ID, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Email already registered")
	}
	return err
}

// Credentials loads what login needs for email.
func (r *UserRepository) Credentials(ctx context.Context, email string) (models.UserCredentials, bool, error) {
	var rows []models.UserCredentials
	err := r.db.WithContext(ctx).Table("users u").
		Select("u.id, u.name, u.email, u.password_hash, r.name AS role").
		Joins("LEFT JOIN roles r ON r.id = u.role_id").
		Where("u.email = ?", email).
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return models.UserCredentials{}, false, err
	}
	return rows[0], true, nil
}

func (r *UserRepository) Profile(ctx context.Context, id uint) (models.UserProfile, error) {
	var rows []models.UserProfile
	if err := r.profiles(ctx).Where("u.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return models.UserProfile{}, err
	}
	if len(rows) == 0 {
		return models.UserProfile{}, apperr.NotFound("User not found")
	}
	return rows[0], nil
}

// Profiles lists every user, newest first.
func (r *UserRepository) Profiles(ctx context.Context) ([]models.UserProfile, error) {
	out := []models.UserProfile{}
	err := r.profiles(ctx).Order("u.created_at DESC, u.id DESC").Scan(&out).Error
	return out, err
}

// Update writes the non-empty fields of values.
func (r *UserRepository) Update(ctx context.Context, id uint, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}
