package repository

import (
	"context"

	"docstore/internal/model"
	"docstore/internal/policy"
)

// FileRepository defines persistence for the file catalog using SQL queries only.
// No business logic here; each method is atomic with respect to other callers.
type FileRepository interface {
	// Create inserts a new file record and returns the stored row,
	// including the generated id and created_at.
	Create(ctx context.Context, file *model.File) (*model.File, error)

	// FindByID returns a file record by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.File, error)

	// ListAccessible returns every record matching the listing scope,
	// compiled into a single WHERE clause (no client-side filtering).
	ListAccessible(ctx context.Context, scope policy.ListScope) ([]model.File, error)

	// UpdateMetadata overwrites the metadata column for the given file.
	// A missing row is not an error; the caller treats it as a no-op.
	UpdateMetadata(ctx context.Context, id int64, md model.Metadata) error

	// IncrementDownloadCount atomically bumps download_count by one.
	IncrementDownloadCount(ctx context.Context, id int64) error

	// Delete removes a file record by ID. It returns nil if the row was
	// deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}
