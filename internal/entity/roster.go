package entity

// MergedRosterRow is one line of the consolidated roster. It is derived from
// the grade and serial records and never persisted.
type MergedRosterRow struct {
	No            int    `json:"No"`
	SerialNo      string `json:"SerialNo"`
	Surname       string `json:"Surname"`
	Firstname     string `json:"Firstname"`
	MiddleName    string `json:"MiddleName"`
	CourseYear    string `json:"CourseYear"`
	Gender        string `json:"Gender"`
	DateOfBirth   string `json:"DateOfBirth"`
	HomeAddress   string `json:"HomeAddress"`
	ContactNumber string `json:"ContactNumber"`
	EmailAddress  string `json:"EmailAddress"`
}

// RosterColumns is the export header, in MergedRosterRow field order.
var RosterColumns = []string{
	"No",
	"Serial No.",
	"Surname",
	"Firstname",
	"Middle Name",
	"Course-Year",
	"Gender",
	"Date of Birth",
	"Home Address",
	"Contact Number",
	"Email Address",
}

// Cells returns the row values in RosterColumns order.
func (r MergedRosterRow) Cells() []any {
	return []any{
		r.No,
		r.SerialNo,
		r.Surname,
		r.Firstname,
		r.MiddleName,
		r.CourseYear,
		r.Gender,
		r.DateOfBirth,
		r.HomeAddress,
		r.ContactNumber,
		r.EmailAddress,
	}
}
