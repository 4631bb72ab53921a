package async

import (
	"context"
	"time"
)

// Job asks for one uploaded source file to be extracted.
type Job struct {
	FileID      string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
