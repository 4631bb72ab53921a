package ingest

import (
	"context"
	"time"

	"github.com/joseph-ayodele/nstp-roster/constants"
)

// UploadRequest carries one ETO or CHED file for a subject.
type UploadRequest struct {
	SubjectID string             `validate:"notblank"`
	UserID    string             `validate:"notblank"`
	Kind      constants.FileKind `validate:"oneof=GradeList SerialNumberList"`
	FileName  string             `validate:"notblank,max=255"`
	Data      []byte             `validate:"required"`
}

// IngestionResult is the per-file upload outcome.
type IngestionResult struct {
	FileID       string
	Kind         constants.FileKind
	BlobRef      string
	Deduplicated bool
	HashHex      string
	Size         int
	UploadedAt   time.Time
}

// Ingestor is the behavior the pipeline depends on.
type Ingestor interface {
	Upload(ctx context.Context, req UploadRequest) (IngestionResult, error)
	// IngestPath uploads a file from the local filesystem.
	IngestPath(ctx context.Context, subjectID, userID string, kind constants.FileKind, path string) (IngestionResult, error)
}
