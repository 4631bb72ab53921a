package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

func TestPath(t *testing.T) {
	assert.Equal(t, "ETOFile/subj-1/file-1/grades.xlsx", Path(constants.GradeList, "subj-1", "file-1", "grades.xlsx"))
	assert.Equal(t, "CHEDFile/subj-1/file-2/ched.pdf", Path(constants.SerialNumberList, "subj-1", "file-2", `C:\Users\me\ched.pdf`))
	assert.Equal(t, "CHEDFile/s/f/x.pdf", Path(constants.SerialNumberList, "s", "f", "../../x.pdf"))
}

func TestLocalBlobStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalBlobStore(t.TempDir(), nil)
	require.NoError(t, err)

	key := Path(constants.GradeList, "s1", "f1", "grades.csv")
	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, key, []byte("a,b\n")))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b\n"), got)

	require.NoError(t, s.Put(ctx, key, []byte("c")))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), got)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Get(ctx, key)
	var missing *common.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "blob", missing.Kind)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLocalBlobStore_RejectsTraversal(t *testing.T) {
	s, err := NewLocalBlobStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, key := range []string{"../outside", "a/../../b", "/etc/passwd", ""} {
		err := s.Put(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, common.ErrInvalidInput, key)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(common.BlobConfig{Backend: "s3"}, nil)
	assert.Error(t, err)
}

func TestNewOSSBlobStore_RequiresConfig(t *testing.T) {
	_, err := NewOSSBlobStore(OSSConfig{Endpoint: "oss-ap-southeast-1.aliyuncs.com"}, nil)
	assert.Error(t, err)
	assert.Equal(t, "https://oss.example.com", normalizeEndpoint(" oss.example.com "))
}
