package postgres

import (
	"context"
	"database/sql"

	"docstore/internal/model"
	"docstore/internal/policy"
	"docstore/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, stored_name, original_name, size, content_type, visibility, blob_key, owner_id, department, download_count, metadata, created_at`

func scanFile(row interface{ Scan(...any) error }) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.StoredName,
		&f.OriginalName,
		&f.Size,
		&f.ContentType,
		&f.Visibility,
		&f.BlobKey,
		&f.OwnerID,
		&f.Department,
		&f.DownloadCount,
		&f.Metadata,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, file *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (stored_name, original_name, size, content_type, visibility, blob_key, owner_id, department)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		file.StoredName,
		file.OriginalName,
		file.Size,
		file.ContentType,
		file.Visibility,
		file.BlobKey,
		file.OwnerID,
		file.Department,
	)
	return scanFile(row)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id int64) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListAccessible compiles the listing scope into one WHERE clause and returns
// every matching row, newest first.
func (r *FilePostgres) ListAccessible(ctx context.Context, scope policy.ListScope) ([]model.File, error) {
	q := `SELECT ` + fileColumns + ` FROM files`
	var args []any

	switch {
	case scope.All:
		// no predicate
	case scope.AllDepartments:
		q += ` WHERE visibility = 'PUBLIC' OR visibility = 'DEPARTMENT' OR (visibility = 'PRIVATE' AND owner_id = $1)`
		args = append(args, scope.UserID)
	default:
		q += ` WHERE visibility = 'PUBLIC' OR (visibility = 'DEPARTMENT' AND department = $1) OR (visibility = 'PRIVATE' AND owner_id = $2)`
		args = append(args, scope.Department, scope.UserID)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateMetadata overwrites the metadata column. Updating a deleted file is
// not an error: the extraction pipeline races with deletes by design.
func (r *FilePostgres) UpdateMetadata(ctx context.Context, id int64, md model.Metadata) error {
	const q = `UPDATE files SET metadata = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, md)
	return err
}

// IncrementDownloadCount bumps download_count in-database so concurrent
// downloads never lose an increment.
func (r *FilePostgres) IncrementDownloadCount(ctx context.Context, id int64) error {
	const q = `UPDATE files SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
