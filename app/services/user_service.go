package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
)

// CreatedUser is returned by admin user creation.
type CreatedUser struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  *string `json:"role"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, id uint) (models.UserProfile, error) {
	return s.users.Profile(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.UserProfile, error) {
	return s.users.Profiles(ctx)
}

// UpdateSelf changes the caller's name and/or password.
func (s *UserService) UpdateSelf(ctx context.Context, id uint, name, password string) error {
	name = strings.TrimSpace(name)
	if name == "" && password == "" {
		return apperr.InvalidRequest("Nothing to update")
	}

	values := map[string]any{}
	if name != "" {
		values["name"] = name
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return apperr.Internal(err)
		}
		values["password_hash"] = hash
	}
	return s.users.Update(ctx, id, values)
}

// Create adds a user with an optional role name.
func (s *UserService) Create(ctx context.Context, name, email, password, role string) (CreatedUser, error) {
	email = strings.TrimSpace(email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return CreatedUser{}, err
	}
	if taken {
		return CreatedUser{}, apperr.Conflict("Email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return CreatedUser{}, apperr.Internal(err)
	}

	var roleID *uint
	var roleName *string
	if role != "" {
		if roleID, err = s.users.RoleID(ctx, role); err != nil {
			return CreatedUser{}, err
		}
		if roleID != nil {
			roleName = &role
		}
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash, RoleID: roleID}
	if err := s.users.Create(ctx, &user); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return CreatedUser{}, apperr.Conflict("Email already exists")
		}
		return CreatedUser{}, err
	}
	return CreatedUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: roleName}, nil
}

// Update renames a user and/or moves them to another role. Empty fields and
// unknown roles leave the stored value untouched.
func (s *UserService) Update(ctx context.Context, id uint, name, role string) error {
	values := map[string]any{}
	if name = strings.TrimSpace(name); name != "" {
		values["name"] = name
	}
	if role != "" {
		roleID, err := s.users.RoleID(ctx, role)
		if err != nil {
			return err
		}
		if roleID != nil {
			values["role_id"] = *roleID
		}
	}
	return s.users.Update(ctx, id, values)
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
