package records

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/extract"
)

// Source identifies where converted records came from.
type Source struct {
	SubjectID    string
	SourceFileID string
	UploadedBy   string
}

// GradeRows converts header-keyed table rows into grade records. A blank
// Count cell falls back to the 1-based row position.
func GradeRows(rows []map[string]string, src Source) []entity.GradeRow {
	out := make([]entity.GradeRow, 0, len(rows))
	for i, row := range rows {
		count := strings.TrimSpace(row[extract.ColCount])
		if count == "" {
			count = strconv.Itoa(i + 1)
		}
		out = append(out, entity.GradeRow{StudentGradeRecord: entity.StudentGradeRecord{
			Count:         count,
			StudentID:     strings.TrimSpace(row[extract.ColStudentID]),
			StudentName:   strings.TrimSpace(row[extract.ColStudentName]),
			CourseYear:    strings.TrimSpace(row[extract.ColCourseYear]),
			Gender:        strings.TrimSpace(row[extract.ColGender]),
			SubjectCode:   strings.TrimSpace(row[extract.ColSubjectCode]),
			Section:       strings.TrimSpace(row[extract.ColSection]),
			DateOfBirth:   strings.TrimSpace(row[extract.ColDateOfBirth]),
			HomeAddress:   strings.TrimSpace(row[extract.ColHomeAddress]),
			ContactNumber: strings.TrimSpace(row[extract.ColContactNumber]),
			EmailAddress:  strings.TrimSpace(row[extract.ColEmailAddress]),
			SourceFileID:  src.SourceFileID,
			SubjectID:     src.SubjectID,
			UploadedBy:    src.UploadedBy,
		}})
	}
	return out
}

// SerialRows tags PDF records with their source file.
func SerialRows(recs []entity.SerialNumberRecord, src Source) []entity.SerialRow {
	out := make([]entity.SerialRow, 0, len(recs))
	for _, r := range recs {
		r.SourceFileID = src.SourceFileID
		out = append(out, entity.SerialRow{SerialNumberRecord: r})
	}
	return out
}

// Unwrap helpers for the merge step.

func Grades(rows []entity.GradeRow) []entity.StudentGradeRecord {
	out := make([]entity.StudentGradeRecord, len(rows))
	for i, r := range rows {
		out[i] = r.StudentGradeRecord
	}
	return out
}

func Serials(rows []entity.SerialRow) []entity.SerialNumberRecord {
	out := make([]entity.SerialNumberRecord, len(rows))
	for i, r := range rows {
		out[i] = r.SerialNumberRecord
	}
	return out
}
