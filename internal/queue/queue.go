// Package queue carries the producer/consumer boundary of the metadata
// extraction pipeline. The lifecycle service only sees the Publisher
// interface; the consumer side runs in a separate worker process and
// delivers at-least-once.
package queue

import "context"

// ExtractionJob is the message published once per successful upload. The
// payload is just the catalog id; the worker re-reads everything else so a
// stale message can never overwrite fresher state with old field values.
type ExtractionJob struct {
	FileID int64 `json:"file_id"`
}

// Publisher enqueues extraction jobs. Implementations must be safe for
// concurrent use; enqueue failures are the caller's to log and ignore,
// since metadata is best-effort enrichment.
type Publisher interface {
	Enqueue(ctx context.Context, fileID int64) error
}
