package repository

import (
	"context"

	"docstore/internal/model"
)

// UserRepository defines persistence for identities.
type UserRepository interface {
	// Create inserts a new user and returns the stored row.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername returns a user by unique username, or sql.ErrNoRows.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List returns all users.
	List(ctx context.Context) ([]model.User, error)

	// ListByDepartment returns all users in one department.
	ListByDepartment(ctx context.Context, department string) ([]model.User, error)

	// UpdateRole changes a user's role and returns the updated row.
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
}
