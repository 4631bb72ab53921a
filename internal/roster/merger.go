// Package roster builds the consolidated NSTP roster from both sources.
package roster

import (
	"log/slog"

	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/matching"
)

type Options struct {
	// Strict drops every record that matches more than one record on the
	// other side instead of emitting one row per pair.
	Strict bool
}

// Ambiguity names a record that matched more than once.
type Ambiguity struct {
	Kind    string // "grade" | "serial"
	Key     string
	Matches int
}

type Result struct {
	Rows             []entity.MergedRosterRow
	UnmatchedGrades  []string // student ids
	UnmatchedSerials []string // serial numbers
	Ambiguous        []Ambiguity
}

// NoMatch reports the empty-roster state. It is not an error.
func (r Result) NoMatch() bool {
	return len(r.Rows) == 0
}

// Merger joins grade and serial records with matching.IsMatch.
type Merger struct {
	logger *slog.Logger
}

func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// Merge emits one row per matching (grade, serial) pair in grade order, then
// serial order, numbering rows 1..N.
func (m *Merger) Merge(grades []entity.StudentGradeRecord, serials []entity.SerialNumberRecord, opts Options) Result {
	pairs := make([][]int, len(grades))
	serialHits := make([]int, len(serials))
	for gi, g := range grades {
		for si, s := range serials {
			if matching.IsMatch(g, s) {
				pairs[gi] = append(pairs[gi], si)
				serialHits[si]++
			}
		}
	}

	var res Result
	if opts.Strict {
		for gi, hits := range pairs {
			if len(hits) > 1 {
				res.Ambiguous = append(res.Ambiguous, Ambiguity{Kind: "grade", Key: grades[gi].StudentID, Matches: len(hits)})
			}
		}
		for si, n := range serialHits {
			if n > 1 {
				res.Ambiguous = append(res.Ambiguous, Ambiguity{Kind: "serial", Key: serials[si].SerialNo, Matches: n})
			}
		}
	}

	for gi, g := range grades {
		hits := pairs[gi]
		if len(hits) == 0 {
			res.UnmatchedGrades = append(res.UnmatchedGrades, g.StudentID)
			continue
		}
		if opts.Strict && len(hits) > 1 {
			continue
		}
		for _, si := range hits {
			if opts.Strict && serialHits[si] > 1 {
				continue
			}
			res.Rows = append(res.Rows, combine(len(res.Rows)+1, g, serials[si]))
		}
	}
	for si, n := range serialHits {
		if n == 0 {
			res.UnmatchedSerials = append(res.UnmatchedSerials, serials[si].SerialNo)
		}
	}

	m.logger.Info("roster.merge",
		"grades", len(grades),
		"serials", len(serials),
		"rows", len(res.Rows),
		"unmatched_grades", len(res.UnmatchedGrades),
		"unmatched_serials", len(res.UnmatchedSerials),
		"ambiguous", len(res.Ambiguous),
		"strict", opts.Strict,
	)
	return res
}

func combine(no int, g entity.StudentGradeRecord, s entity.SerialNumberRecord) entity.MergedRosterRow {
	return entity.MergedRosterRow{
		No:            no,
		SerialNo:      s.SerialNo,
		Surname:       s.Surname,
		Firstname:     s.Firstname,
		MiddleName:    s.MiddleName,
		CourseYear:    g.CourseYear,
		Gender:        g.Gender,
		DateOfBirth:   g.DateOfBirth,
		HomeAddress:   g.HomeAddress,
		ContactNumber: g.ContactNumber,
		EmailAddress:  g.EmailAddress,
	}
}
