package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/pdfrows"
	"github.com/joseph-ayodele/nstp-roster/internal/records"
	"github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

// RowExtractor rebuilds serial-number rows from a CHED PDF.
type RowExtractor interface {
	Extract(ctx context.Context, blob []byte) (pdfrows.Result, error)
}

// SerialStage turns an uploaded CHED PDF into stored serial-number records.
type SerialStage struct {
	FilesRepo    repository.SourceFileRepository
	SubjectsRepo repository.SubjectRepository
	StudentsRepo repository.StudentRepository
	Blobs        storage.BlobStore
	Extractor    RowExtractor
	Validator    *records.Validator
	Logger       *slog.Logger
}

func NewSerialStage(
	files repository.SourceFileRepository,
	subjects repository.SubjectRepository,
	students repository.StudentRepository,
	blobs storage.BlobStore,
	rx RowExtractor,
	logger *slog.Logger,
) (*SerialStage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v, err := records.NewValidator(records.SerialRequired, logger)
	if err != nil {
		return nil, err
	}
	if rx == nil {
		e, err := pdfrows.New(pdfrows.DefaultConfig(), nil, logger)
		if err != nil {
			return nil, err
		}
		rx = e
	}
	return &SerialStage{
		FilesRepo:    files,
		SubjectsRepo: subjects,
		StudentsRepo: students,
		Blobs:        blobs,
		Extractor:    rx,
		Validator:    v,
		Logger:       logger,
	}, nil
}

// Run extracts, validates and persists the serial-number list fileID.
func (s *SerialStage) Run(ctx context.Context, fileID string) (StageReport, error) {
	log := common.LoggerFromContext(ctx, s.Logger)
	report := StageReport{FileID: fileID}

	file, subject, blob, err := loadSource(ctx, s.FilesRepo, s.SubjectsRepo, s.Blobs, fileID, constants.SerialNumberList)
	if err != nil {
		return report, err
	}

	res, err := s.Extractor.Extract(ctx, blob)
	if err != nil {
		markFailed(ctx, log, s.FilesRepo, fileID, err)
		return report, err
	}

	rows := records.SerialRows(res.Records, records.Source{SubjectID: subject.ID, SourceFileID: file.ID})
	valid, skipped := records.FilterValid(s.Validator, rows)
	report.Extracted = len(res.Rows)
	report.Skipped = len(res.Dropped) + len(skipped)
	report.Issues = rowIssues(res, skipped)
	report.Terminated = res.Terminated

	n, err := s.StudentsRepo.SaveSerials(ctx, subject, records.Serials(valid))
	report.Persisted = n
	if err != nil {
		markFailed(ctx, log, s.FilesRepo, fileID, err)
		return report, fmt.Errorf("save serial records: %w", err)
	}

	if err := s.FilesRepo.SetStatus(ctx, fileID, constants.FileStatusExtracted, ""); err != nil {
		return report, err
	}
	log.Info("stage.serials.ok",
		"file_id", fileID,
		"pages", res.Pages,
		"extracted", report.Extracted,
		"persisted", report.Persisted,
		"skipped", report.Skipped,
		"terminated", res.Terminated,
	)
	return report, nil
}

// rowIssues numbers validation skips by their position in res.Rows, the
// index space the extractor already uses for dropped rows.
func rowIssues(res pdfrows.Result, skipped []common.RowIssue) []common.RowIssue {
	out := make([]common.RowIssue, 0, len(res.Dropped)+len(skipped))
	out = append(out, res.Dropped...)
	for _, issue := range skipped {
		if i := issue.Index - 1; i >= 0 && i < len(res.RecordRows) {
			issue.Index = res.RecordRows[i]
		}
		out = append(out, issue)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
