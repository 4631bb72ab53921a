package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

type SourceFileRepository interface {
	Put(ctx context.Context, f entity.SourceFile) error
	// GetByID looks the id up in both metadata collections.
	GetByID(ctx context.Context, id string) (entity.SourceFile, error)
	// FindBySubject returns the file of kind uploaded for subjectID, if any.
	FindBySubject(ctx context.Context, subjectID string, kind constants.FileKind) (*entity.SourceFile, error)
	ListBySubject(ctx context.Context, subjectID string) ([]entity.SourceFile, error)
	SetStatus(ctx context.Context, id string, status constants.FileStatus, lastError string) error
	Delete(ctx context.Context, f entity.SourceFile) error
}

type sourceFileRepo struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewSourceFileRepository(store DocumentStore, logger *slog.Logger) SourceFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sourceFileRepo{store: store, logger: logger}
}

var fileKinds = []constants.FileKind{constants.GradeList, constants.SerialNumberList}

func (r *sourceFileRepo) Put(ctx context.Context, f entity.SourceFile) error {
	if err := putJSON(ctx, r.store, f.Kind.MetadataCollection(), f.ID, f); err != nil {
		r.logger.Error("failed to save source file", "file_id", f.ID, "kind", f.Kind, "error", err)
		return err
	}
	return nil
}

func (r *sourceFileRepo) GetByID(ctx context.Context, id string) (entity.SourceFile, error) {
	for _, kind := range fileKinds {
		f, err := getJSON[entity.SourceFile](ctx, r.store, kind.MetadataCollection(), id)
		if err == nil {
			return f, nil
		}
		if !IsNotFound(err) {
			return entity.SourceFile{}, err
		}
	}
	return entity.SourceFile{}, &common.MissingDependencyError{Kind: "source_file", ID: id}
}

func (r *sourceFileRepo) FindBySubject(ctx context.Context, subjectID string, kind constants.FileKind) (*entity.SourceFile, error) {
	files, err := listJSON[entity.SourceFile](ctx, r.store, kind.MetadataCollection())
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].SubjectID == subjectID {
			return &files[i], nil
		}
	}
	return nil, nil
}

func (r *sourceFileRepo) ListBySubject(ctx context.Context, subjectID string) ([]entity.SourceFile, error) {
	var out []entity.SourceFile
	for _, kind := range fileKinds {
		files, err := listJSON[entity.SourceFile](ctx, r.store, kind.MetadataCollection())
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.SubjectID == subjectID {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (r *sourceFileRepo) SetStatus(ctx context.Context, id string, status constants.FileStatus, lastError string) error {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f.Status = status
	f.LastError = lastError
	return r.Put(ctx, f)
}

func (r *sourceFileRepo) Delete(ctx context.Context, f entity.SourceFile) error {
	return r.store.Delete(ctx, f.Kind.MetadataCollection(), f.ID)
}
