// Package extract implements the asynchronous metadata-extraction pipeline:
// fetch a stored file's bytes, parse type-specific metadata, and write it
// back to the catalog. Extraction failures never escape a job; they become a
// metadata error marker instead.
package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"docstore/internal/model"
	"docstore/internal/repository"
	"docstore/internal/storage"
)

// Content types dispatched to the word-processing extractor.
const (
	contentTypePDF  = "application/pdf"
	contentTypeDoc  = "application/msword"
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Pipeline processes one extraction job per call. It is safe for concurrent
// use: each job touches only its own file record, and the metadata write is
// an idempotent overwrite, so duplicate deliveries are harmless.
type Pipeline struct {
	files  repository.FileRepository
	store  storage.Storage
	logger *slog.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(files repository.FileRepository, store storage.Storage, logger *slog.Logger) *Pipeline {
	return &Pipeline{files: files, store: store, logger: logger}
}

// Process runs the extraction job for one file id. A missing record means the
// job raced a delete and is a silent no-op. Blob-fetch and parser failures are
// terminal: they record an error marker and complete the job. The only error
// returned is a failed catalog write, which makes the consumer redeliver.
func (p *Pipeline) Process(ctx context.Context, fileID int64) error {
	file, err := p.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.logger.Info("file gone before extraction, skipping", "file_id", fileID)
			return nil
		}
		return fmt.Errorf("load file record: %w", err)
	}

	md := p.extract(ctx, file)

	if err := p.files.UpdateMetadata(ctx, file.ID, md); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	p.logger.Info("metadata extraction completed", "file_id", file.ID, "content_type", file.ContentType)
	return nil
}

func (p *Pipeline) extract(ctx context.Context, file *model.File) model.Metadata {
	rc, _, err := p.store.Get(ctx, file.BlobKey)
	if err != nil {
		p.logger.Error("blob fetch failed during extraction", "file_id", file.ID, "error", err)
		return model.Metadata{"error": fmt.Sprintf("failed to extract metadata: %v", err)}
	}
	defer rc.Close()

	// Parsers need random access; spool the blob to scratch storage.
	path, cleanup, err := spool(rc)
	if err != nil {
		p.logger.Error("spooling blob to scratch failed", "file_id", file.ID, "error", err)
		return model.Metadata{"error": fmt.Sprintf("failed to extract metadata: %v", err)}
	}
	defer cleanup()

	var md model.Metadata
	switch file.ContentType {
	case contentTypePDF:
		md, err = extractPDF(path)
	case contentTypeDoc, contentTypeDocx:
		md, err = extractDocx(path)
	default:
		// Unrecognized content types get an empty structured result, not an error.
		return model.Metadata{}
	}
	if err != nil {
		p.logger.Warn("extractor failed", "file_id", file.ID, "content_type", file.ContentType, "error", err)
		return model.Metadata{"error": fmt.Sprintf("could not extract metadata: %v", err)}
	}
	return md
}

// spool copies r to a temp file and returns its path plus a cleanup func.
func spool(r io.Reader) (string, func(), error) {
	f, err := os.CreateTemp("", "docstore-extract-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
