package service

import (
	"context"
	"database/sql"
	"errors"

	"docstore/internal/auth"
	"docstore/internal/model"
	"docstore/internal/repository"
)

// AuthService issues access tokens and resolves them back to users.
type AuthService interface {
	// Login verifies credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, error)

	// CurrentUser resolves a raw bearer token to the user it identifies.
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, issuer *auth.TokenIssuer) AuthService {
	return &authService{users: users, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.issuer.Issue(user.Username)
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	username, err := s.issuer.Subject(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
