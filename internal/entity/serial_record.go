package entity

// SerialNumberRecord is one CHED serial-number entry. JSON names match the
// documents already stored under StudentwithSerialNumber.
type SerialNumberRecord struct {
	No           string `json:"No"`
	SerialNo     string `json:"SerialNo"`
	AcademicYear string `json:"AY"`
	Surname      string `json:"Surname"`
	Firstname    string `json:"Firstname"`
	MiddleName   string `json:"MiddleName"`
	SourceFileID string `json:"SourceFileId,omitempty"`
}
