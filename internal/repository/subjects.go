package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

type SubjectRepository interface {
	Put(ctx context.Context, s entity.SubjectContext) error
	// Get returns *common.MissingDependencyError when the subject is absent.
	Get(ctx context.Context, id string) (entity.SubjectContext, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]entity.SubjectContext, error)
	Delete(ctx context.Context, id string) error
}

type subjectRepo struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewSubjectRepository(store DocumentStore, logger *slog.Logger) SubjectRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &subjectRepo{store: store, logger: logger}
}

func (r *subjectRepo) Put(ctx context.Context, s entity.SubjectContext) error {
	if err := putJSON(ctx, r.store, constants.SubjectCollection, s.ID, s); err != nil {
		r.logger.Error("failed to save subject", "subject_id", s.ID, "error", err)
		return err
	}
	return nil
}

func (r *subjectRepo) Get(ctx context.Context, id string) (entity.SubjectContext, error) {
	s, err := getJSON[entity.SubjectContext](ctx, r.store, constants.SubjectCollection, id)
	if IsNotFound(err) {
		return s, &common.MissingDependencyError{Kind: "subject", ID: id}
	}
	return s, err
}

func (r *subjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, constants.SubjectCollection, id)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (r *subjectRepo) List(ctx context.Context) ([]entity.SubjectContext, error) {
	return listJSON[entity.SubjectContext](ctx, r.store, constants.SubjectCollection)
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, constants.SubjectCollection, id)
}
