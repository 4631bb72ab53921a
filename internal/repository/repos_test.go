package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

func subject() entity.SubjectContext {
	return entity.SubjectContext{
		ID:            "subj-1",
		SubjectNumber: "NSTP1",
		Semester:      "1st sem",
		AcademicYear:  "2024-2025",
		UserID:        "user-1",
		CreatedAt:     time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPaths(t *testing.T) {
	s := subject()
	assert.Equal(t, "ListOfStudents/NSTP1-1st sem-2024-2025/students", GradeListPath(s))
	assert.Equal(t, "StudentwithSerialNumber/NSTP1-1st sem-2024-2025/student", SerialListPath(s))
	assert.Equal(t, SerialListPath(s), StudentPath(constants.SerialNumberList, s))
}

func TestSubjectRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSubjectRepository(newMemStore(t), nil)

	_, err := repo.Get(ctx, "subj-1")
	var missing *common.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "subject", missing.Kind)

	require.NoError(t, repo.Put(ctx, subject()))
	got, err := repo.Get(ctx, "subj-1")
	require.NoError(t, err)
	assert.Equal(t, subject(), got)

	ok, err := repo.Exists(ctx, "subj-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSourceFileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSourceFileRepository(newMemStore(t), nil)

	eto := entity.SourceFile{ID: "f-eto", SubjectID: "subj-1", Kind: constants.GradeList, Status: constants.FileStatusUploaded}
	ched := entity.SourceFile{ID: "f-ched", SubjectID: "subj-1", Kind: constants.SerialNumberList, Status: constants.FileStatusUploaded}
	other := entity.SourceFile{ID: "f-other", SubjectID: "subj-2", Kind: constants.GradeList}
	for _, f := range []entity.SourceFile{eto, ched, other} {
		require.NoError(t, repo.Put(ctx, f))
	}

	got, err := repo.GetByID(ctx, "f-ched")
	require.NoError(t, err)
	assert.Equal(t, constants.SerialNumberList, got.Kind)

	found, err := repo.FindBySubject(ctx, "subj-1", constants.GradeList)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "f-eto", found.ID)

	none, err := repo.FindBySubject(ctx, "subj-3", constants.GradeList)
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := repo.ListBySubject(ctx, "subj-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.SetStatus(ctx, "f-eto", constants.FileStatusFailed, "bad header"))
	got, err = repo.GetByID(ctx, "f-eto")
	require.NoError(t, err)
	assert.Equal(t, constants.FileStatusFailed, got.Status)
	assert.Equal(t, "bad header", got.LastError)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.GetByID(ctx, "f-eto")
	var missing *common.MissingDependencyError
	assert.ErrorAs(t, err, &missing)
}

func TestStudentRepository_StoredFieldNames(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	repo := NewStudentRepository(store, nil, nil)
	s := subject()

	n, err := repo.SaveSerials(ctx, s, []entity.SerialNumberRecord{
		{No: "1", SerialNo: "SN0001-2024", AcademicYear: "2024-2025", Surname: "DELA CRUZ", Firstname: "JUAN"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := store.Get(ctx, SerialListPath(s), "SN0001-2024")
	require.NoError(t, err)
	assert.JSONEq(t, `{"No":"1","SerialNo":"SN0001-2024","AY":"2024-2025","Surname":"DELA CRUZ","Firstname":"JUAN","MiddleName":""}`, string(doc.Data))

	_, err = repo.SaveGrades(ctx, s, []entity.StudentGradeRecord{{Count: "1", StudentID: "2021-001", StudentName: "Dela Cruz, Juan"}})
	require.NoError(t, err)
	grades, err := repo.ListGrades(ctx, s)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "Dela Cruz, Juan", grades[0].StudentName)

	cleared, err := repo.Clear(ctx, s, constants.GradeList)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
	serials, err := repo.ListSerials(ctx, s)
	require.NoError(t, err)
	assert.Len(t, serials, 1)
}
