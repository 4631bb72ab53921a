package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/extract"
	"github.com/joseph-ayodele/nstp-roster/internal/records"
	"github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

// GradeStage turns an uploaded ETO spreadsheet into stored grade records.
type GradeStage struct {
	FilesRepo    repository.SourceFileRepository
	SubjectsRepo repository.SubjectRepository
	StudentsRepo repository.StudentRepository
	Blobs        storage.BlobStore
	Extractor    extract.TableExtractor
	Validator    *records.Validator
	Logger       *slog.Logger
}

func NewGradeStage(
	files repository.SourceFileRepository,
	subjects repository.SubjectRepository,
	students repository.StudentRepository,
	blobs storage.BlobStore,
	tx extract.TableExtractor,
	logger *slog.Logger,
) (*GradeStage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v, err := records.NewValidator(records.GradeRequired, logger)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		tx = extract.NewTabular(logger)
	}
	return &GradeStage{
		FilesRepo:    files,
		SubjectsRepo: subjects,
		StudentsRepo: students,
		Blobs:        blobs,
		Extractor:    tx,
		Validator:    v,
		Logger:       logger,
	}, nil
}

// Run extracts, validates and persists the grade list fileID.
func (s *GradeStage) Run(ctx context.Context, fileID string) (StageReport, error) {
	log := common.LoggerFromContext(ctx, s.Logger)
	report := StageReport{FileID: fileID}

	file, subject, blob, err := loadSource(ctx, s.FilesRepo, s.SubjectsRepo, s.Blobs, fileID, constants.GradeList)
	if err != nil {
		return report, err
	}

	table, err := s.Extractor.Extract(ctx, blob, extract.GradeListSchema)
	if err != nil {
		markFailed(ctx, log, s.FilesRepo, fileID, err)
		return report, err
	}

	rows := records.GradeRows(table.Rows, records.Source{
		SubjectID:    subject.ID,
		SourceFileID: file.ID,
		UploadedBy:   file.UserID,
	})
	valid, skipped := records.FilterValid(s.Validator, rows)
	report.Extracted = len(rows)
	report.Skipped = len(skipped)
	report.Issues = skipped

	n, err := s.StudentsRepo.SaveGrades(ctx, subject, records.Grades(valid))
	report.Persisted = n
	if err != nil {
		markFailed(ctx, log, s.FilesRepo, fileID, err)
		return report, fmt.Errorf("save grade records: %w", err)
	}

	if err := s.FilesRepo.SetStatus(ctx, fileID, constants.FileStatusExtracted, ""); err != nil {
		return report, err
	}
	log.Info("stage.grades.ok",
		"file_id", fileID,
		"header_row", table.HeaderRow,
		"extracted", report.Extracted,
		"persisted", report.Persisted,
		"skipped", report.Skipped,
	)
	return report, nil
}

// loadSource resolves the file metadata, its subject and its blob.
func loadSource(
	ctx context.Context,
	files repository.SourceFileRepository,
	subjects repository.SubjectRepository,
	blobs storage.BlobStore,
	fileID string,
	want constants.FileKind,
) (entity.SourceFile, entity.SubjectContext, []byte, error) {
	file, err := files.GetByID(ctx, fileID)
	if err != nil {
		return file, entity.SubjectContext{}, nil, err
	}
	if file.Kind != want {
		return file, entity.SubjectContext{}, nil, common.NewAppError("WRONG_FILE_KIND",
			fmt.Sprintf("file %s is a %s, expected %s", fileID, file.Kind, want), common.ErrInvalidInput)
	}
	subject, err := subjects.Get(ctx, file.SubjectID)
	if err != nil {
		return file, subject, nil, err
	}
	blob, err := blobs.Get(ctx, file.BlobRef)
	if err != nil {
		return file, subject, nil, err
	}
	return file, subject, blob, nil
}

func markFailed(ctx context.Context, log *slog.Logger, files repository.SourceFileRepository, fileID string, cause error) {
	log.Error("stage.failed", "file_id", fileID, "err", cause)
	if err := files.SetStatus(ctx, fileID, constants.FileStatusFailed, cause.Error()); err != nil {
		log.Warn("stage.status_update_failed", "file_id", fileID, "err", err)
	}
}
