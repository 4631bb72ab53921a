package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func gradeHeader() []any {
	out := make([]any, len(GradeListSchema.Required))
	for i, h := range GradeListSchema.Required {
		out[i] = h
	}
	return out
}

func TestExtract_XLSXHeaderAfterTitleRows(t *testing.T) {
	blob := workbook(t,
		[]any{"UNIVERSITY OF EXAMPLE"},
		[]any{"Enrollment and Testing Office"},
		[]any{"NSTP1 1st sem 2024-2025"},
		gradeHeader(),
		[]any{1, "2021-001", "Dela Cruz, Juan", "BSCS-3", "M", "NSTP1", "A", "2000-01-01", "Cebu City", "09171234567"},
	)

	table, err := NewTabular(nil).Extract(context.Background(), blob, GradeListSchema)
	require.NoError(t, err)

	assert.Equal(t, "xlsx", table.Format)
	assert.Equal(t, 3, table.HeaderRow)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "2021-001", row[ColStudentID])
	assert.Equal(t, "Dela Cruz, Juan", row[ColStudentName])
	assert.Equal(t, "1", row[ColCount])
	assert.Len(t, row, len(GradeListSchema.Required))
}

func TestExtract_EveryRowKeyedByEveryColumn(t *testing.T) {
	blob := workbook(t,
		gradeHeader(),
		[]any{1, "A-1", "Reyes, Ana"},
		[]any{},
		[]any{2, "A-2", "Santos, Pedro", "BSIT-1"},
	)

	table, err := NewTabular(nil).Extract(context.Background(), blob, GradeListSchema)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		for _, h := range GradeListSchema.Required {
			_, ok := row[h]
			assert.True(t, ok, "missing key %q", h)
		}
	}
	assert.Equal(t, "", table.Rows[0][ColContactNumber])
	assert.Equal(t, "A-2", table.Rows[1][ColStudentID])
}

func TestExtract_HeaderMatchIsCaseInsensitive(t *testing.T) {
	header := gradeHeader()
	header[1] = "  STUDENT id "
	header = append(header, "email address")
	blob := workbook(t, header, []any{1, "X-9", "Lim, Bo", "", "", "", "", "", "", "", "bo@example.com"})

	table, err := NewTabular(nil).Extract(context.Background(), blob, GradeListSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "X-9", table.Rows[0][ColStudentID])
	assert.Equal(t, "bo@example.com", table.Rows[0][ColEmailAddress])
	assert.Contains(t, table.Headers, ColEmailAddress)
}

func TestExtract_CSV(t *testing.T) {
	csv := "\xEF\xBB\xBFReport title\n" +
		"Count,Student ID,Student Name,Course-Year,Gender,Subject Code,Section,Date of Birth,Home Address,Contact Number\n" +
		"1,2021-001,\"Dela Cruz, Juan\",BSCS-3,M,NSTP1,A,2000-01-01,Cebu City,09171234567\n"

	table, err := NewTabular(nil).Extract(context.Background(), []byte(csv), GradeListSchema)
	require.NoError(t, err)
	assert.Equal(t, "csv", table.Format)
	assert.Equal(t, 1, table.HeaderRow)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Dela Cruz, Juan", table.Rows[0][ColStudentName])
}

func TestExtract_HeaderNotFound(t *testing.T) {
	blob := workbook(t, []any{"Count", "Student ID"}, []any{1, "2021-001"})

	_, err := NewTabular(nil).Extract(context.Background(), blob, GradeListSchema)
	var hnf *common.HeaderNotFoundError
	require.ErrorAs(t, err, &hnf)
	assert.Equal(t, 2, hnf.Scanned)
}

func TestExtract_CorruptWorkbook(t *testing.T) {
	tests := []struct {
		name   string
		blob   []byte
		format string
	}{
		{"truncated zip", []byte("PK\x03\x04garbage"), "xlsx"},
		{"legacy ole", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0}, "xls"},
		{"binary", []byte{0x00, 0x01, 0x02}, "csv"},
		{"empty", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTabular(nil).Extract(context.Background(), tt.blob, GradeListSchema)
			var decErr *common.DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, tt.format, decErr.Format)
			if tt.format == "xls" {
				assert.Contains(t, err.Error(), "re-save as .xlsx")
			}
		})
	}
}
