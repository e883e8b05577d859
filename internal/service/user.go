package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docstore/internal/auth"
	"docstore/internal/model"
	"docstore/internal/repository"
)

// UserService covers identity administration: creating users, inspecting
// them, and the admin-only role update.
type UserService interface {
	// CreateUser registers a new user. Managers and admins only.
	CreateUser(ctx context.Context, username, password string, role model.Role, department string, current *model.User) (*model.User, error)

	// GetUser returns one user. Managers see their own department only.
	GetUser(ctx context.Context, id int64, current *model.User) (*model.User, error)

	// ListUsers lists all users (admin) or the caller's department (manager).
	ListUsers(ctx context.Context, current *model.User) ([]model.User, error)

	// UpdateRole changes a user's role. Admins only.
	UpdateRole(ctx context.Context, id int64, role model.Role, current *model.User) (*model.User, error)
}

type userService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs a new UserService. bcryptCost <= 0 selects the
// library default.
func NewUserService(users repository.UserRepository, bcryptCost int) UserService {
	return &userService{users: users, bcryptCost: bcryptCost}
}

func (s *userService) CreateUser(ctx context.Context, username, password string, role model.Role, department string, current *model.User) (*model.User, error) {
	if current.Role != model.RoleManager && current.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only managers and admins can create users", ErrInsufficientRole)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
	})
}

func (s *userService) GetUser(ctx context.Context, id int64, current *model.User) (*model.User, error) {
	if current.Role != model.RoleManager && current.Role != model.RoleAdmin {
		return nil, ErrInsufficientRole
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if current.Role == model.RoleManager && user.Department != current.Department {
		return nil, fmt.Errorf("%w: can only view users from your department", ErrInsufficientRole)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, current *model.User) ([]model.User, error) {
	switch current.Role {
	case model.RoleAdmin:
		return s.users.List(ctx)
	case model.RoleManager:
		return s.users.ListByDepartment(ctx, current.Department)
	default:
		return nil, ErrInsufficientRole
	}
}

func (s *userService) UpdateRole(ctx context.Context, id int64, role model.Role, current *model.User) (*model.User, error) {
	if current.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can change roles", ErrInsufficientRole)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.users.UpdateRole(ctx, id, role)
}
