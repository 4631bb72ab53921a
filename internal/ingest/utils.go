package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/nstp-roster/constants"
)

// AllowedExt checks if a file name's extension is accepted for kind.
func AllowedExt(kind constants.FileKind, fileName string) bool {
	ext := constants.NormalizeExt(filepath.Ext(fileName))
	return ext != "" && constants.AllowedExt(kind, ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
