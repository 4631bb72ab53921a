package processor

import "github.com/joseph-ayodele/nstp-roster/internal/common"

// StageReport summarises one extraction stage run.
type StageReport struct {
	FileID    string
	Extracted int
	Persisted int
	Skipped   int
	Issues    []common.RowIssue
	// Terminated is set when a PDF ended on its terminator line.
	Terminated bool
}
