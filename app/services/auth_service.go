package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
)

// AuthUser is the user object returned with a token.
type AuthUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type AuthService struct {
	users  *repositories.UserRepository
	signer *auth.Signer
}

func NewAuthService(users *repositories.UserRepository, signer *auth.Signer) *AuthService {
	return &AuthService{users: users, signer: signer}
}

// Register creates a parishioner account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if taken {
		return AuthResult{}, apperr.Conflict("Email already registered")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	roleID, err := s.users.RoleID(ctx, auth.RoleParishioner)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash, RoleID: roleID}
	if err := s.users.Create(ctx, &user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.signer.Sign(user.ID, user.Email, auth.RoleParishioner)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	logger.WithCtx(ctx).Info("auth: registered", "user_id", user.ID)
	return AuthResult{
		Token: token,
		User:  AuthUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: auth.RoleParishioner},
	}, nil
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	creds, found, err := s.users.Credentials(ctx, strings.TrimSpace(email))
	if err != nil {
		return AuthResult{}, err
	}
	if !found || !auth.CheckPassword(creds.PasswordHash, password) {
		return AuthResult{}, apperr.Unauthorized("Invalid credentials")
	}

	role := auth.RoleParishioner
	if creds.Role != nil && *creds.Role != "" {
		role = *creds.Role
	}
	token, err := s.signer.Sign(creds.ID, creds.Email, role)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{
		Token: token,
		User:  AuthUser{ID: creds.ID, Name: creds.Name, Email: creds.Email, Role: role},
	}, nil
}
