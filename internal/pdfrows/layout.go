package pdfrows

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// Layout names the token positions of one CHED record. Indexes past the end
// of a record yield empty fields.
type Layout struct {
	Name              string `yaml:"name"`
	NoIndex           int    `yaml:"no"`
	SerialIndex       int    `yaml:"serial"`
	SerialSuffixIndex int    `yaml:"serial_suffix"`
	AYStartIndex      int    `yaml:"ay_start"`
	AYEndIndex        int    `yaml:"ay_end"`
	SurnameIndex      int    `yaml:"surname"`
	FirstnameIndex    int    `yaml:"firstname"`
	MiddleNameIndex   int    `yaml:"middle_name"`
	MinTokens         int    `yaml:"min_tokens"`
}

var (
	// DefaultLayout matches the CHED export where the serial suffix and the
	// academic-year bounds sit in separate cells with gap columns between them.
	DefaultLayout = Layout{
		Name:              "default",
		NoIndex:           0,
		SerialIndex:       1,
		SerialSuffixIndex: 3,
		AYStartIndex:      4,
		AYEndIndex:        6,
		SurnameIndex:      7,
		FirstnameIndex:    8,
		MiddleNameIndex:   9,
		MinTokens:         9,
	}

	// CompactLayout is for exports where the serial suffix doubles as the
	// academic-year start: "1 SN0001 -2024 2025 DELA CRUZ JUAN".
	CompactLayout = Layout{
		Name:              "compact",
		NoIndex:           0,
		SerialIndex:       1,
		SerialSuffixIndex: 2,
		AYStartIndex:      2,
		AYEndIndex:        3,
		SurnameIndex:      4,
		FirstnameIndex:    5,
		MiddleNameIndex:   6,
		MinTokens:         6,
	}
)

func LayoutByName(name string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultLayout, true
	case "compact":
		return CompactLayout, true
	default:
		return Layout{}, false
	}
}

var yearToken = regexp.MustCompile(`^-?\d{4}-?$`)

// Fits reports whether tokens are long enough for l and carry a year in both
// academic-year positions.
func (l Layout) Fits(tokens []string) bool {
	if len(tokens) < l.MinTokens {
		return false
	}
	for _, i := range []int{l.AYStartIndex, l.AYEndIndex} {
		if i < 0 || i >= len(tokens) || !yearToken.MatchString(strings.TrimSpace(tokens[i])) {
			return false
		}
	}
	return true
}

// Map projects record tokens onto a SerialNumberRecord. It reports false when
// the record has fewer than MinTokens tokens.
func (l Layout) Map(tokens []string) (entity.SerialNumberRecord, bool) {
	if len(tokens) < l.MinTokens {
		return entity.SerialNumberRecord{}, false
	}
	at := func(i int) string {
		if i < 0 || i >= len(tokens) {
			return ""
		}
		return strings.TrimSpace(tokens[i])
	}

	serial := at(l.SerialIndex)
	if !strings.Contains(serial, "-") {
		serial = joinHyphen(serial, at(l.SerialSuffixIndex))
	}

	return entity.SerialNumberRecord{
		No:           at(l.NoIndex),
		SerialNo:     serial,
		AcademicYear: joinHyphen(at(l.AYStartIndex), at(l.AYEndIndex)),
		Surname:      at(l.SurnameIndex),
		Firstname:    at(l.FirstnameIndex),
		MiddleName:   at(l.MiddleNameIndex),
	}, true
}

// joinHyphen joins two split cells with exactly one hyphen.
func joinHyphen(a, b string) string {
	a = strings.Trim(a, "- ")
	b = strings.Trim(b, "- ")
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "-" + b
	}
}
