package entity

import "time"

// SubjectContext identifies the term and section a roster belongs to.
type SubjectContext struct {
	ID            string    `json:"id" validate:"required"`
	SubjectName   string    `json:"subjectName" validate:"max=200"`
	SubjectNumber string    `json:"subjectNumber" validate:"notblank,max=64"`
	Semester      string    `json:"semester" validate:"notblank,max=32"`
	AcademicYear  string    `json:"academicYear" validate:"academic_year"`
	UserID        string    `json:"userId" validate:"notblank"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TermKey is the hyphen-joined triplet both roster collections are keyed by.
func (s SubjectContext) TermKey() string {
	return s.SubjectNumber + "-" + s.Semester + "-" + s.AcademicYear
}
