package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"missing subject", &MissingDependencyError{Kind: "subject", ID: "s1"}, codes.NotFound},
		{"wrapped missing", fmt.Errorf("load: %w", &MissingDependencyError{Kind: "blob", ID: "k"}), codes.NotFound},
		{"decode", &DecodeError{Format: "pdf", Cause: errors.New("bad xref")}, codes.InvalidArgument},
		{"header", &HeaderNotFoundError{Expected: []string{"Count"}, Scanned: 10}, codes.InvalidArgument},
		{"precondition", NewAppError("SUBJECT_LOCKED", "locked", ErrFailedPrecondition), codes.FailedPrecondition},
		{"exists", NewAppError("FILE_EXISTS", "dup", ErrAlreadyExists), codes.AlreadyExists},
		{"plain", errors.New("disk on fire"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestMissingDependencyIsNotFound(t *testing.T) {
	err := fmt.Errorf("get: %w", &MissingDependencyError{Kind: "source_file", ID: "f1"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `source_file "f1" not found`, errors.Unwrap(err).Error())
}

func TestAppErrorStatus(t *testing.T) {
	err := NewAppError("VALIDATION_ERROR", "bad", ErrValidation)
	s, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, s.Code())
	assert.Equal(t, "VALIDATION_ERROR: bad: validation failed", err.Error())
}

func TestRowIssueString(t *testing.T) {
	assert.Equal(t, "row 3 (SN1): missing AY", RowIssue{Index: 3, Key: "SN1", Reason: "missing AY"}.String())
	assert.Equal(t, "row 4: too short", RowIssue{Index: 4, Reason: "too short"}.String())
}
