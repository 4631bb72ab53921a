package constants

import (
	"strings"
)

// Semester is the canonical term label stored on a subject. The stored string
// is part of the roster collection path, so these values must not change.
type Semester string

const (
	FirstSemester  Semester = "1st sem"
	SecondSemester Semester = "2nd sem"
	Summer         Semester = "summer"
)

var allSemesters = []Semester{
	FirstSemester,
	SecondSemester,
	Summer,
}

func SemestersAsStringSlice() []string {
	result := make([]string, len(allSemesters))
	for i, s := range allSemesters {
		result[i] = string(s)
	}
	return result
}

// CanonicalSemester maps free-form input ("1st Semester", "First Sem", "2") onto
// the stored label. The second return is false when nothing matched.
func CanonicalSemester(input string) (Semester, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Semester{
		"1":               FirstSemester,
		"1st":             FirstSemester,
		"first":           FirstSemester,
		"first sem":       FirstSemester,
		"first semester":  FirstSemester,
		"1st semester":    FirstSemester,
		"2":               SecondSemester,
		"2nd":             SecondSemester,
		"second":          SecondSemester,
		"second sem":      SecondSemester,
		"second semester": SecondSemester,
		"2nd semester":    SecondSemester,
		"summer term":     Summer,
		"midyear":         Summer,
	}

	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allSemesters {
		if normalized == string(s) {
			return s, true
		}
	}

	return "", false
}
