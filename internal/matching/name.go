// Package matching pairs grade-list students with CHED serial records by name.
package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// fold trims, NFC-normalises and case-folds s. Casers carry state, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// SplitStudentName splits "Surname, First Middle" into the surname and the
// first whitespace-separated token after the comma. A name without a comma
// has no first token.
func SplitStudentName(name string) (surname, first string) {
	sur, rest, ok := strings.Cut(name, ",")
	surname = strings.TrimSpace(sur)
	if !ok {
		return surname, ""
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		first = fields[0]
	}
	return surname, first
}

// IsMatch compares surname and first name only, after trimming and case
// folding. Middle names and suffixes are ignored.
func IsMatch(grade entity.StudentGradeRecord, serial entity.SerialNumberRecord) bool {
	surname, first := SplitStudentName(grade.StudentName)
	if surname == "" || first == "" {
		return false
	}
	return fold(surname) == fold(serial.Surname) && fold(first) == fold(serial.Firstname)
}
