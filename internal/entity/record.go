package entity

import "github.com/joseph-ayodele/nstp-roster/constants"

// Record is the tagged union of the two source row shapes. The merge step
// relies on Kind to know which schema a record came from.
type Record interface {
	Kind() constants.FileKind
	Key() string
	// Fields exposes the record as field name -> value for validation.
	Fields() map[string]string
}

// GradeRow wraps a grade-list record.
type GradeRow struct{ StudentGradeRecord }

// SerialRow wraps a serial-number record.
type SerialRow struct{ SerialNumberRecord }

func (GradeRow) Kind() constants.FileKind  { return constants.GradeList }
func (SerialRow) Kind() constants.FileKind { return constants.SerialNumberList }

func (g GradeRow) Key() string  { return g.StudentID }
func (s SerialRow) Key() string { return s.SerialNo }

func (g GradeRow) Fields() map[string]string {
	return map[string]string{
		"Count":         g.Count,
		"StudentID":     g.StudentID,
		"StudentName":   g.StudentName,
		"CourseYear":    g.CourseYear,
		"Gender":        g.Gender,
		"SubjectCode":   g.SubjectCode,
		"Section":       g.Section,
		"DateOfBirth":   g.DateOfBirth,
		"HomeAddress":   g.HomeAddress,
		"ContactNumber": g.ContactNumber,
		"EmailAddress":  g.EmailAddress,
	}
}

func (s SerialRow) Fields() map[string]string {
	return map[string]string{
		"No":         s.No,
		"SerialNo":   s.SerialNo,
		"AY":         s.AcademicYear,
		"Surname":    s.Surname,
		"Firstname":  s.Firstname,
		"MiddleName": s.MiddleName,
	}
}
