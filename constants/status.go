package constants

// FileStatus is the processing state recorded on an uploaded source file.
type FileStatus string

// Stable values (stored as-is on the file metadata document).
const (
	FileStatusUploaded  FileStatus = "UPLOADED"  // blob stored, nothing extracted yet
	FileStatusExtracted FileStatus = "EXTRACTED" // rows extracted and persisted
	FileStatusFailed    FileStatus = "FAILED"    // last extraction attempt failed
)
