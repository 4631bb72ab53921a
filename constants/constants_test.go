package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSemester(t *testing.T) {
	tests := []struct {
		in   string
		want Semester
		ok   bool
	}{
		{"1st Semester", FirstSemester, true},
		{"  first   sem ", FirstSemester, true},
		{"2", SecondSemester, true},
		{"2nd sem", SecondSemester, true},
		{"Summer", Summer, true},
		{"midyear", Summer, true},
		{"fall", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalSemester(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(GradeList, ".XLSX"))
	assert.True(t, AllowedExt(GradeList, "csv"))
	assert.False(t, AllowedExt(GradeList, ".pdf"))
	assert.False(t, AllowedExt(GradeList, ".xls"))
	assert.True(t, AllowedExt(SerialNumberList, ".pdf"))
	assert.False(t, AllowedExt(FileKind("Other"), ".pdf"))
}

func TestFileKindCollections(t *testing.T) {
	assert.Equal(t, "ETOFile", GradeList.BlobRoot())
	assert.Equal(t, "uploadedCHEDFile", SerialNumberList.MetadataCollection())
	assert.False(t, FileKind("").Valid())
}
