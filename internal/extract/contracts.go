package extract

import (
	"context"
	"strings"
)

// TableExtractor turns a spreadsheet-like blob into header-keyed rows.
type TableExtractor interface {
	Extract(ctx context.Context, blob []byte, schema HeaderSchema) (Table, error)
}

// HeaderSchema lists the columns a header row must carry. Optional columns are
// mapped when present and otherwise left out of the row maps.
type HeaderSchema struct {
	Required []string
	Optional []string
}

// Table is the located header plus every data row below it, in file order.
type Table struct {
	// Headers are the schema columns found, Required first.
	Headers []string
	// HeaderRow is the 0-based index of the header within the sheet.
	HeaderRow int
	Rows      []map[string]string
	Format    string // "xlsx" | "xls" | "csv"
}

// Column names of the ETO grade list export.
const (
	ColCount         = "Count"
	ColStudentID     = "Student ID"
	ColStudentName   = "Student Name"
	ColCourseYear    = "Course-Year"
	ColGender        = "Gender"
	ColSubjectCode   = "Subject Code"
	ColSection       = "Section"
	ColDateOfBirth   = "Date of Birth"
	ColHomeAddress   = "Home Address"
	ColContactNumber = "Contact Number"
	ColEmailAddress  = "Email Address"
)

// GradeListSchema is the header of the ETO export.
var GradeListSchema = HeaderSchema{
	Required: []string{
		ColCount,
		ColStudentID,
		ColStudentName,
		ColCourseYear,
		ColGender,
		ColSubjectCode,
		ColSection,
		ColDateOfBirth,
		ColHomeAddress,
		ColContactNumber,
	},
	Optional: []string{ColEmailAddress},
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
