package entity

import (
	"time"

	"github.com/joseph-ayodele/nstp-roster/constants"
)

// SourceFile is the metadata for one uploaded ETO or CHED file.
type SourceFile struct {
	ID          string               `json:"id"`
	SubjectID   string               `json:"subjectId"`
	UserID      string               `json:"userId"`
	FileName    string               `json:"fileName"`
	BlobRef     string               `json:"blobRef"`
	ContentHash string               `json:"contentHash"`
	Size        int                  `json:"size"`
	Kind        constants.FileKind   `json:"kind"`
	Status      constants.FileStatus `json:"status"`
	LastError   string               `json:"lastError,omitempty"`
	UploadedAt  time.Time            `json:"uploadedAt"`
}
