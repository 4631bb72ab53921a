package constants

import "strings"

// FileKind identifies which office produced an uploaded file.
type FileKind string

const (
	// GradeList is the ETO spreadsheet export.
	GradeList FileKind = "GradeList"
	// SerialNumberList is the CHED serial-number PDF.
	SerialNumberList FileKind = "SerialNumberList"
)

// BlobRoot returns the top-level blob folder for a file kind.
func (k FileKind) BlobRoot() string {
	switch k {
	case GradeList:
		return "ETOFile"
	case SerialNumberList:
		return "CHEDFile"
	default:
		return ""
	}
}

// MetadataCollection returns the collection holding upload metadata for a kind.
func (k FileKind) MetadataCollection() string {
	switch k {
	case GradeList:
		return "uploadedETOFile"
	case SerialNumberList:
		return "uploadedCHEDFile"
	default:
		return ""
	}
}

func (k FileKind) Valid() bool {
	return k == GradeList || k == SerialNumberList
}

// Document store collection roots shared with existing stored data.
const (
	SubjectCollection      = "SubjectInformation"
	GradeListRoot          = "ListOfStudents"
	GradeListLeaf          = "students"
	SerialNumberListRoot   = "StudentwithSerialNumber"
	SerialNumberListLeaf   = "student"
	DefaultPersistBatchMax = 500
)

// allowedExtensions holds the accepted upload extensions per kind. Legacy
// BIFF .xls workbooks are not readable by the spreadsheet decoder.
var allowedExtensions = map[FileKind]map[string]struct{}{
	GradeList: {
		"xlsx": {},
		"csv":  {},
	},
	SerialNumberList: {
		"pdf": {},
	},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt reports whether ext is accepted for uploads of the given kind.
func AllowedExt(kind FileKind, ext string) bool {
	exts, ok := allowedExtensions[kind]
	if !ok {
		return false
	}
	_, ok = exts[NormalizeExt(ext)]
	return ok
}
