package pdfrows

import (
	"math"
	"regexp"
	"strings"
)

var (
	reControl    = regexp.MustCompile(`[\r\n\t]+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
)

// normalizeText collapses control characters and repeated spaces in a run.
func normalizeText(s string) string {
	if s == "" {
		return s
	}
	s = reControl.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// physicalRow is one printed line: the runs whose Y stays within tolerance of
// the line's first run.
type physicalRow struct {
	Y      float64
	Tokens []string
}

func (r physicalRow) text() string {
	return strings.Join(r.Tokens, " ")
}

// groupRuns clusters runs into printed lines. The reference Y is the first
// non-empty run of the current line; a run further than tol from it opens a
// new line.
func groupRuns(runs []Run, tol float64) []physicalRow {
	var (
		rows []physicalRow
		cur  *physicalRow
	)
	for _, run := range runs {
		text := normalizeText(run.Text)
		if text == "" {
			continue
		}
		if cur == nil || math.Abs(run.Y-cur.Y) > tol {
			rows = append(rows, physicalRow{Y: run.Y})
			cur = &rows[len(rows)-1]
		}
		cur.Tokens = append(cur.Tokens, text)
	}
	return rows
}

type rowFilter struct {
	boilerplate []string
	terminator  string
}

func newRowFilter(cfg Config) rowFilter {
	f := rowFilter{terminator: strings.ToUpper(normalizeText(cfg.Terminator))}
	for _, p := range cfg.Boilerplate {
		if p = normalizeText(p); p != "" {
			f.boilerplate = append(f.boilerplate, p)
		}
	}
	return f
}

func (f rowFilter) terminates(text string) bool {
	return strings.Contains(strings.ToUpper(text), f.terminator)
}

func (f rowFilter) boilerplateIn(text string) (string, bool) {
	for _, p := range f.boilerplate {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// recordMerger folds continuation lines into the record they belong to.
type recordMerger struct {
	start   *regexp.Regexp
	current []string
	open    bool
	done    [][]string
}

// add reports false when the line is an orphan continuation with no record
// open to attach it to.
func (m *recordMerger) add(row physicalRow) bool {
	if m.start.MatchString(row.text()) {
		m.flush()
		m.current = append([]string(nil), row.Tokens...)
		m.open = true
		return true
	}
	if !m.open {
		return false
	}
	m.current = append(m.current, row.Tokens...)
	return true
}

func (m *recordMerger) flush() {
	if m.open {
		m.done = append(m.done, m.current)
	}
	m.current = nil
	m.open = false
}

// take flushes and returns the finished records.
func (m *recordMerger) take() [][]string {
	m.flush()
	out := m.done
	m.done = nil
	return out
}
