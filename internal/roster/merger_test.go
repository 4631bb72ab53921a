package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

func grade(id, name string) entity.StudentGradeRecord {
	return entity.StudentGradeRecord{StudentID: id, StudentName: name, CourseYear: "BSCS-" + id, Gender: "M"}
}

func serial(sn, surname, first string) entity.SerialNumberRecord {
	return entity.SerialNumberRecord{SerialNo: sn, Surname: surname, Firstname: first, AcademicYear: "2024-2025"}
}

func TestMerge_DenseNumbering(t *testing.T) {
	grades := []entity.StudentGradeRecord{
		grade("1", "Cruz, Juan"),
		grade("2", "Nobody, Here"),
		grade("3", "Reyes, Ana Marie"),
	}
	serials := []entity.SerialNumberRecord{
		serial("SN3", "REYES", "ANA"),
		serial("SN1", "CRUZ", "JUAN"),
		serial("SN9", "GHOST", "X"),
	}

	res := NewMerger(nil).Merge(grades, serials, Options{})

	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[0].No)
	assert.Equal(t, "SN1", res.Rows[0].SerialNo)
	assert.Equal(t, "BSCS-1", res.Rows[0].CourseYear)
	assert.Equal(t, 2, res.Rows[1].No)
	assert.Equal(t, "SN3", res.Rows[1].SerialNo)
	assert.Equal(t, []string{"2"}, res.UnmatchedGrades)
	assert.Equal(t, []string{"SN9"}, res.UnmatchedSerials)
	assert.False(t, res.NoMatch())
}

func TestMerge_CrossProduct(t *testing.T) {
	grades := []entity.StudentGradeRecord{
		grade("1", "Cruz, Juan"),
		grade("2", "Cruz, Juan Pablo"),
	}
	serials := []entity.SerialNumberRecord{
		serial("SNA", "Cruz", "Juan"),
		serial("SNB", "CRUZ", "JUAN"),
	}

	res := NewMerger(nil).Merge(grades, serials, Options{})

	require.Len(t, res.Rows, 4)
	got := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		got[i] = r.SerialNo
		assert.Equal(t, i+1, r.No)
	}
	assert.Equal(t, []string{"SNA", "SNB", "SNA", "SNB"}, got)
	assert.Equal(t, "BSCS-2", res.Rows[2].CourseYear)
	assert.Empty(t, res.Ambiguous)
}

func TestMerge_StrictDropsAmbiguous(t *testing.T) {
	grades := []entity.StudentGradeRecord{
		grade("1", "Cruz, Juan"),
		grade("2", "Reyes, Ana"),
		grade("3", "Lim, Bo"),
	}
	serials := []entity.SerialNumberRecord{
		serial("SNA", "Cruz", "Juan"),
		serial("SNB", "Cruz", "Juan"),
		serial("SNC", "Reyes", "Ana"),
		serial("SND", "Lim", "Bo"),
		serial("SNE", "Lim", "Bo"),
	}

	res := NewMerger(nil).Merge(grades, serials, Options{Strict: true})

	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].No)
	assert.Equal(t, "SNC", res.Rows[0].SerialNo)
	assert.Len(t, res.Ambiguous, 2)
	assert.Equal(t, Ambiguity{Kind: "grade", Key: "1", Matches: 2}, res.Ambiguous[0])
}

func TestMerge_StrictSerialMatchedTwice(t *testing.T) {
	grades := []entity.StudentGradeRecord{
		grade("1", "Cruz, Juan"),
		grade("2", "Cruz, Juan Pablo"),
	}
	serials := []entity.SerialNumberRecord{serial("SNA", "Cruz", "Juan")}

	res := NewMerger(nil).Merge(grades, serials, Options{Strict: true})

	assert.True(t, res.NoMatch())
	require.Len(t, res.Ambiguous, 1)
	assert.Equal(t, "serial", res.Ambiguous[0].Kind)
}

func TestMerge_Empty(t *testing.T) {
	res := NewMerger(nil).Merge(nil, []entity.SerialNumberRecord{serial("SN1", "A", "B")}, Options{})
	assert.True(t, res.NoMatch())
	assert.Equal(t, []string{"SN1"}, res.UnmatchedSerials)
}
