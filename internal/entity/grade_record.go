package entity

// StudentGradeRecord is one row of the ETO grade list. JSON names match the
// documents already stored under ListOfStudents.
type StudentGradeRecord struct {
	Count         string `json:"Count"`
	StudentID     string `json:"StudentID"`
	StudentName   string `json:"StudentName"`
	CourseYear    string `json:"CourseYear"`
	Gender        string `json:"Gender"`
	SubjectCode   string `json:"SubjectCode"`
	Section       string `json:"Section"`
	DateOfBirth   string `json:"DateOfBirth"`
	HomeAddress   string `json:"HomeAddress"`
	ContactNumber string `json:"ContactNumber"`
	EmailAddress  string `json:"EmailAddress,omitempty"`
	SourceFileID  string `json:"SourceFileId"`
	SubjectID     string `json:"SubjectId"`
	UploadedBy    string `json:"UploadedBy,omitempty"`
}
