package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"docstore/internal/model"
	"docstore/internal/policy"
	"docstore/internal/queue"
	"docstore/internal/repository"
	"docstore/internal/storage"
)

// FileService defines the file lifecycle use cases: role-gated upload,
// read, download, deletion, and listing.
type FileService interface {
	// Upload validates the caller's entitlements, writes the blob, creates
	// the catalog record, and enqueues metadata extraction. The declared
	// size is trusted from the transport layer.
	Upload(ctx context.Context, r io.Reader, originalName, contentType string, size int64, visibility model.Visibility, user *model.User) (*model.File, error)

	// GetByID returns a file record the user is allowed to see.
	GetByID(ctx context.Context, id int64, user *model.User) (*model.File, error)

	// Download returns the file's content stream and its record. The
	// download counter is committed before the blob read begins.
	Download(ctx context.Context, id int64, user *model.User) (io.ReadCloser, *model.File, error)

	// Delete removes the catalog row, then the blob.
	Delete(ctx context.Context, id int64, user *model.User) error

	// ListAccessible returns every file the user may see, as a snapshot.
	ListAccessible(ctx context.Context, user *model.User) ([]model.File, error)
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store  storage.Storage
	files  repository.FileRepository
	jobs   queue.Publisher
	logger *slog.Logger
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, files repository.FileRepository, jobs queue.Publisher, logger *slog.Logger) FileService {
	return &fileService{store: store, files: files, jobs: jobs, logger: logger}
}

func (s *fileService) Upload(ctx context.Context, r io.Reader, originalName, contentType string, size int64, visibility model.Visibility, user *model.User) (*model.File, error) {
	ent := policy.EntitlementFor(user.Role)

	ext := policy.Extension(originalName)
	if !ent.Extensions[ext] {
		return nil, fmt.Errorf("%w: .%s", ErrFileTypeNotAllowed, ext)
	}
	if size > ent.MaxSize {
		return nil, ErrFileSizeExceeded
	}
	if !ent.Visibilities[visibility] {
		return nil, fmt.Errorf("%w: cannot create %s files", ErrFileAccessDenied, visibility)
	}

	// Fresh key per upload, namespaced by the uploader's department.
	// Discarded on failure, never reused.
	storedName := uuid.New().String() + "." + ext
	blobKey := user.Department + "/" + storedName

	// Blob before catalog: an aborted upload leaves no record, and a crash
	// after the put leaves at worst an orphan blob with no catalog row
	// pointing at it.
	if _, err := s.store.Put(ctx, blobKey, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalName,
		},
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUploadFailed, err)
	}

	file := &model.File{
		StoredName:   storedName,
		OriginalName: originalName,
		Size:         size,
		ContentType:  contentType,
		Visibility:   visibility,
		BlobKey:      blobKey,
		OwnerID:      user.ID,
		Department:   user.Department,
	}
	stored, err := s.files.Create(ctx, file)
	if err != nil {
		// Best-effort cleanup of the just-written blob; the key is dead
		// either way.
		if delErr := s.store.Delete(ctx, blobKey); delErr != nil {
			s.logger.Error("orphan blob after failed catalog write", "blob_key", blobKey, "error", delErr)
		}
		return nil, fmt.Errorf("create file record: %w", err)
	}

	// Metadata is best-effort enrichment: a failed enqueue is logged, never
	// surfaced to the uploader.
	if err := s.jobs.Enqueue(ctx, stored.ID); err != nil {
		s.logger.Error("failed to enqueue metadata extraction", "file_id", stored.ID, "error", err)
	}

	return stored, nil
}

func (s *fileService) GetByID(ctx context.Context, id int64, user *model.User) (*model.File, error) {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if !policy.CanAccess(file, user) {
		return nil, ErrFileAccessDenied
	}
	return file, nil
}

func (s *fileService) Download(ctx context.Context, id int64, user *model.User) (io.ReadCloser, *model.File, error) {
	file, err := s.GetByID(ctx, id, user)
	if err != nil {
		return nil, nil, err
	}

	// The counter is committed before the blob read begins, so a crash
	// mid-stream still records the access attempt. A missing blob therefore
	// leaves the count incremented; accepted trade-off.
	if err := s.files.IncrementDownloadCount(ctx, file.ID); err != nil {
		return nil, nil, fmt.Errorf("increment download count: %w", err)
	}
	file.DownloadCount++

	rc, _, err := s.store.Get(ctx, file.BlobKey)
	if err != nil {
		// Catalog row without a resolvable blob: logged for operators as a
		// storage-integrity anomaly, surfaced to the caller as not-found.
		s.logger.Error("storage integrity anomaly: blob missing for catalog row",
			"file_id", file.ID, "blob_key", file.BlobKey, "error", err)
		return nil, nil, ErrFileNotFound
	}
	return rc, file, nil
}

func (s *fileService) Delete(ctx context.Context, id int64, user *model.User) error {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFileNotFound
		}
		return err
	}
	if !policy.CanDelete(file, user) {
		return fmt.Errorf("%w: cannot delete this file", ErrFileAccessDenied)
	}

	// Catalog row first: once it is gone no reader can discover the blob
	// key, so a failed blob delete leaves only a sweepable orphan. Deletion
	// is successful once the row is gone.
	if err := s.files.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	if err := s.store.Delete(ctx, file.BlobKey); err != nil {
		s.logger.Error("orphan blob after catalog delete", "blob_key", file.BlobKey, "error", err)
	}
	return nil
}

func (s *fileService) ListAccessible(ctx context.Context, user *model.User) ([]model.File, error) {
	return s.files.ListAccessible(ctx, policy.ScopeFor(user))
}
