package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// StudentRepository stores the records derived from both source files.
type StudentRepository interface {
	SaveGrades(ctx context.Context, s entity.SubjectContext, recs []entity.StudentGradeRecord) (int, error)
	SaveSerials(ctx context.Context, s entity.SubjectContext, recs []entity.SerialNumberRecord) (int, error)
	ListGrades(ctx context.Context, s entity.SubjectContext) ([]entity.StudentGradeRecord, error)
	ListSerials(ctx context.Context, s entity.SubjectContext) ([]entity.SerialNumberRecord, error)
	// Clear drops every derived record of kind for the subject's term.
	Clear(ctx context.Context, s entity.SubjectContext, kind constants.FileKind) (int64, error)
}

type studentRepo struct {
	store     DocumentStore
	persister *BatchPersister
	logger    *slog.Logger
}

func NewStudentRepository(store DocumentStore, persister *BatchPersister, logger *slog.Logger) StudentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if persister == nil {
		persister = NewBatchPersister(store, BatchConfig{}, logger)
	}
	return &studentRepo{store: store, persister: persister, logger: logger}
}

func (r *studentRepo) SaveGrades(ctx context.Context, s entity.SubjectContext, recs []entity.StudentGradeRecord) (int, error) {
	return WriteAll(ctx, r.persister, GradeListPath(s), func(g entity.StudentGradeRecord) string { return g.StudentID }, recs)
}

func (r *studentRepo) SaveSerials(ctx context.Context, s entity.SubjectContext, recs []entity.SerialNumberRecord) (int, error) {
	return WriteAll(ctx, r.persister, SerialListPath(s), func(sn entity.SerialNumberRecord) string { return sn.SerialNo }, recs)
}

func (r *studentRepo) ListGrades(ctx context.Context, s entity.SubjectContext) ([]entity.StudentGradeRecord, error) {
	return listJSON[entity.StudentGradeRecord](ctx, r.store, GradeListPath(s))
}

func (r *studentRepo) ListSerials(ctx context.Context, s entity.SubjectContext) ([]entity.SerialNumberRecord, error) {
	return listJSON[entity.SerialNumberRecord](ctx, r.store, SerialListPath(s))
}

func (r *studentRepo) Clear(ctx context.Context, s entity.SubjectContext, kind constants.FileKind) (int64, error) {
	n, err := r.store.DeleteCollection(ctx, StudentPath(kind, s))
	if err != nil {
		r.logger.Error("failed to clear student records", "subject_id", s.ID, "kind", kind, "error", err)
		return 0, err
	}
	return n, nil
}
