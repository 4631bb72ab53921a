package processor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/export"
	"github.com/joseph-ayodele/nstp-roster/internal/extract"
	"github.com/joseph-ayodele/nstp-roster/internal/ingest"
	"github.com/joseph-ayodele/nstp-roster/internal/pdfrows"
	"github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/roster"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

type stubDecoder struct{ pages []pdfrows.Page }

func (s stubDecoder) Decode([]byte) ([]pdfrows.Page, error) { return s.pages, nil }

func line(y float64, texts ...string) []pdfrows.Run {
	runs := make([]pdfrows.Run, len(texts))
	for i, t := range texts {
		runs[i] = pdfrows.Run{Text: t, X: float64(40 + i*60), Y: y}
	}
	return runs
}

type fixture struct {
	p     *Processor
	blobs *storage.LocalBlobStore
}

func newFixture(t *testing.T, pdfLines ...[]pdfrows.Run) fixture {
	t.Helper()
	ctx := context.Background()

	store, err := repository.OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := storage.NewLocalBlobStore(t.TempDir(), nil)
	require.NoError(t, err)

	subjects := repository.NewSubjectRepository(store, nil)
	files := repository.NewSourceFileRepository(store, nil)
	students := repository.NewStudentRepository(store, repository.NewBatchPersister(store, repository.BatchConfig{BatchSize: 2}, nil), nil)

	page := pdfrows.Page{Number: 1}
	for _, l := range pdfLines {
		page.Runs = append(page.Runs, l...)
	}
	rx, err := pdfrows.New(pdfrows.DefaultConfig(), stubDecoder{pages: []pdfrows.Page{page}}, nil)
	require.NoError(t, err)

	grades, err := NewGradeStage(files, subjects, students, blobs, extract.NewTabular(nil), nil)
	require.NoError(t, err)
	serials, err := NewSerialStage(files, subjects, students, blobs, rx, nil)
	require.NoError(t, err)

	return fixture{
		p:     NewProcessor(nil, subjects, files, students, blobs, grades, serials),
		blobs: blobs,
	}
}

func gradeWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	header := make([]any, len(extract.GradeListSchema.Required))
	for i, h := range extract.GradeListSchema.Required {
		header[i] = h
	}
	all := append([][]any{
		{"UNIVERSITY OF EXAMPLE"},
		{"Enrollment and Testing Office"},
		{"NSTP1 1st sem 2024-2025"},
		header,
	}, rows...)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newSubject(t *testing.T, p *Processor) entity.SubjectContext {
	t.Helper()
	s, err := p.CreateSubject(context.Background(), SubjectInput{
		SubjectName:   "National Service Training Program 1",
		SubjectNumber: "NSTP1",
		Semester:      "First Semester",
		AcademicYear:  "2024-2025",
		UserID:        "registrar-1",
	})
	require.NoError(t, err)
	return s
}

func upload(t *testing.T, p *Processor, s entity.SubjectContext, kind constants.FileKind, name string, data []byte) string {
	t.Helper()
	res, err := p.Upload(context.Background(), ingest.UploadRequest{
		SubjectID: s.ID,
		UserID:    s.UserID,
		Kind:      kind,
		FileName:  name,
		Data:      data,
	})
	require.NoError(t, err)
	return res.FileID
}

func TestProcessor_EndToEnd(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t,
		line(800, "LIST OF NSTP GRADUATES WITH SERIAL NUMBER"),
		line(700, "1", "SN0001", "-2024", "2025", "DELA CRUZ", "JUAN"),
		line(680, "NOTHING FOLLOWS"),
	)
	p := fx.p
	s := newSubject(t, p)
	assert.Equal(t, string(constants.FirstSemester), s.Semester)

	gradeID := upload(t, p, s, constants.GradeList, "eto.xlsx", gradeWorkbook(t,
		[]any{1, "2021-001", "Dela Cruz, Juan", "BSCS-3", "M", "NSTP1", "A", "2000-01-01", "Cebu City", "09171234567"},
		[]any{2, "2021-002", "Reyes, Ana", "BSIT-1", "F", "NSTP1", "A", "2001-02-02", "Mandaue", "09170000000"},
		[]any{3, "", "No Id, Student", "BSIT-1", "F", "NSTP1", "A", "", "", ""},
	))
	serialID := upload(t, p, s, constants.SerialNumberList, "ched.pdf", []byte("%PDF-1.4 stub"))

	gr, err := p.ProcessFile(ctx, gradeID)
	require.NoError(t, err)
	assert.Equal(t, 3, gr.Extracted)
	assert.Equal(t, 2, gr.Persisted)
	assert.Equal(t, 1, gr.Skipped)

	sr, err := p.ProcessFile(ctx, serialID)
	require.NoError(t, err)
	assert.Equal(t, 1, sr.Persisted)
	assert.True(t, sr.Terminated)

	f, err := p.Files.GetByID(ctx, serialID)
	require.NoError(t, err)
	assert.Equal(t, constants.FileStatusExtracted, f.Status)

	res, err := p.BuildRoster(ctx, s.ID, roster.Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, entity.MergedRosterRow{
		No:            1,
		SerialNo:      "SN0001-2024",
		Surname:       "DELA CRUZ",
		Firstname:     "JUAN",
		CourseYear:    "BSCS-3",
		Gender:        "M",
		DateOfBirth:   "2000-01-01",
		HomeAddress:   "Cebu City",
		ContactNumber: "09171234567",
	}, res.Rows[0])
	assert.Equal(t, []string{"2021-002"}, res.UnmatchedGrades)

	serials, err := p.Students.ListSerials(ctx, s)
	require.NoError(t, err)
	require.Len(t, serials, 1)
	assert.Equal(t, "2024-2025", serials[0].AcademicYear)

	xlsx, err := p.ExportRoster(ctx, s.ID, roster.Options{})
	require.NoError(t, err)
	wb, err := excelize.OpenReader(bytes.NewReader(xlsx))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SN0001-2024", rows[1][1])
}

func TestProcessor_RemoveSourceFileCascades(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, line(700, "1", "SN0001", "-2024", "2025", "DELA CRUZ", "JUAN"))
	p := fx.p
	s := newSubject(t, p)

	gradeID := upload(t, p, s, constants.GradeList, "eto.xlsx", gradeWorkbook(t,
		[]any{1, "2021-001", "Dela Cruz, Juan", "BSCS-3", "M", "NSTP1", "A", "2000-01-01", "Cebu City", "09171234567"},
	))
	_, err := p.ProcessGradeList(ctx, gradeID)
	require.NoError(t, err)

	f, err := p.Files.GetByID(ctx, gradeID)
	require.NoError(t, err)

	require.NoError(t, p.RemoveSourceFile(ctx, gradeID))

	grades, err := p.Students.ListGrades(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, grades)

	_, err = p.Files.GetByID(ctx, gradeID)
	var missing *common.MissingDependencyError
	require.ErrorAs(t, err, &missing)

	ok, err := fx.blobs.Exists(ctx, f.BlobRef)
	require.NoError(t, err)
	assert.False(t, ok)

	// the subject is editable again once its files are gone
	_, err = p.UpdateSubject(ctx, s.ID, SubjectInput{
		SubjectNumber: "NSTP2", Semester: "2nd", AcademicYear: "2024-2025", UserID: s.UserID,
	})
	require.NoError(t, err)
}

func TestProcessor_UpdateSubjectLockedByUpload(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).p
	s := newSubject(t, p)
	upload(t, p, s, constants.SerialNumberList, "ched.pdf", []byte("%PDF-1.4 stub"))

	_, err := p.UpdateSubject(ctx, s.ID, SubjectInput{
		SubjectNumber: "NSTP2", Semester: "1st", AcademicYear: "2024-2025", UserID: s.UserID,
	})
	require.ErrorIs(t, err, common.ErrFailedPrecondition)
}

func TestProcessor_CreateSubjectRejectsBadInput(t *testing.T) {
	p := newFixture(t).p
	ctx := context.Background()

	_, err := p.CreateSubject(ctx, SubjectInput{SubjectNumber: "NSTP1", Semester: "fall", AcademicYear: "2024-2025", UserID: "u"})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = p.CreateSubject(ctx, SubjectInput{SubjectNumber: "NSTP1", Semester: "1st", AcademicYear: "2024-2026", UserID: "u"})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestProcessor_StageRejectsWrongKind(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).p
	s := newSubject(t, p)
	id := upload(t, p, s, constants.SerialNumberList, "ched.pdf", []byte("%PDF-1.4 stub"))

	_, err := p.ProcessGradeList(ctx, id)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestProcessor_CorruptGradeListMarksFailed(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).p
	s := newSubject(t, p)
	id := upload(t, p, s, constants.GradeList, "eto.xlsx", []byte("PK\x03\x04 not really a zip"))

	_, err := p.ProcessGradeList(ctx, id)
	var decodeErr *common.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	f, err := p.Files.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.FileStatusFailed, f.Status)
	assert.NotEmpty(t, f.LastError)
}

func TestNumericLess(t *testing.T) {
	assert.True(t, numericLess("2", "10"))
	assert.False(t, numericLess("10", "2"))
	assert.True(t, numericLess("5", "x"))
	assert.False(t, numericLess("x", "5"))
	assert.False(t, numericLess("x", "y"))
}
