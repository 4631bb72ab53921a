package repository

import (
	"path"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// GradeListPath is ListOfStudents/{subjectNumber}-{semester}-{academicYear}/students.
func GradeListPath(s entity.SubjectContext) string {
	return path.Join(constants.GradeListRoot, s.TermKey(), constants.GradeListLeaf)
}

// SerialListPath is StudentwithSerialNumber/{subjectNumber}-{semester}-{academicYear}/student.
func SerialListPath(s entity.SubjectContext) string {
	return path.Join(constants.SerialNumberListRoot, s.TermKey(), constants.SerialNumberListLeaf)
}

// StudentPath returns the collection holding derived records of kind.
func StudentPath(kind constants.FileKind, s entity.SubjectContext) string {
	if kind == constants.SerialNumberList {
		return SerialListPath(s)
	}
	return GradeListPath(s)
}
