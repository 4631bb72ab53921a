package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/export"
	"github.com/joseph-ayodele/nstp-roster/internal/ingest"
	"github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/roster"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

// SubjectInput is the caller-supplied part of a SubjectContext.
type SubjectInput struct {
	SubjectName   string
	SubjectNumber string
	Semester      string
	AcademicYear  string
	UserID        string
}

// Processor coordinates upload, both extraction stages, roster build and export.
type Processor struct {
	Logger   *slog.Logger
	Subjects repository.SubjectRepository
	Files    repository.SourceFileRepository
	Students repository.StudentRepository
	Blobs    storage.BlobStore
	Ingest   ingest.Ingestor
	Grades   *GradeStage
	Serials  *SerialStage
	Merger   *roster.Merger
	Export   *export.Service

	now func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	subjects repository.SubjectRepository,
	files repository.SourceFileRepository,
	students repository.StudentRepository,
	blobs storage.BlobStore,
	grades *GradeStage,
	serials *SerialStage,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:   logger,
		Subjects: subjects,
		Files:    files,
		Students: students,
		Blobs:    blobs,
		Ingest:   ingest.NewUsecase(subjects, files, blobs, logger),
		Grades:   grades,
		Serials:  serials,
		Merger:   roster.NewMerger(logger),
		Export:   export.NewService(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSubject stores a new subject with its semester in canonical form.
func (p *Processor) CreateSubject(ctx context.Context, in SubjectInput) (entity.SubjectContext, error) {
	s, err := subjectFrom(in)
	if err != nil {
		return s, err
	}
	s.ID = uuid.NewString()
	s.CreatedAt = p.now()
	if err := common.ValidateStruct(s); err != nil {
		return s, err
	}
	if err := p.Subjects.Put(ctx, s); err != nil {
		return s, fmt.Errorf("save subject: %w", err)
	}
	common.LoggerFromContext(ctx, p.Logger).Info("subject.created", "subject_id", s.ID, "term", s.TermKey())
	return s, nil
}

// UpdateSubject rewrites a subject. The term triplet keys the stored roster
// collections, so a subject with uploaded files cannot change.
func (p *Processor) UpdateSubject(ctx context.Context, id string, in SubjectInput) (entity.SubjectContext, error) {
	cur, err := p.Subjects.Get(ctx, id)
	if err != nil {
		return cur, err
	}
	files, err := p.Files.ListBySubject(ctx, id)
	if err != nil {
		return cur, err
	}
	if len(files) > 0 {
		return cur, common.NewAppError("SUBJECT_LOCKED",
			fmt.Sprintf("subject %s has %d uploaded file(s); remove them before editing", id, len(files)),
			common.ErrFailedPrecondition)
	}

	next, err := subjectFrom(in)
	if err != nil {
		return cur, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	if err := common.ValidateStruct(next); err != nil {
		return cur, err
	}
	if err := p.Subjects.Put(ctx, next); err != nil {
		return cur, fmt.Errorf("save subject: %w", err)
	}
	return next, nil
}

func (p *Processor) GetSubject(ctx context.Context, id string) (entity.SubjectContext, error) {
	return p.Subjects.Get(ctx, id)
}

func subjectFrom(in SubjectInput) (entity.SubjectContext, error) {
	sem, ok := constants.CanonicalSemester(in.Semester)
	if !ok {
		return entity.SubjectContext{}, common.NewAppError("INVALID_SEMESTER",
			fmt.Sprintf("semester %q must be one of: %s", in.Semester, strings.Join(constants.SemestersAsStringSlice(), ", ")),
			common.ErrInvalidInput)
	}
	return entity.SubjectContext{
		SubjectName:   strings.TrimSpace(in.SubjectName),
		SubjectNumber: strings.TrimSpace(in.SubjectNumber),
		Semester:      string(sem),
		AcademicYear:  strings.TrimSpace(in.AcademicYear),
		UserID:        strings.TrimSpace(in.UserID),
	}, nil
}

// Upload stores a source file for later processing.
func (p *Processor) Upload(ctx context.Context, req ingest.UploadRequest) (ingest.IngestionResult, error) {
	return p.Ingest.Upload(ctx, req)
}

func (p *Processor) ProcessGradeList(ctx context.Context, fileID string) (StageReport, error) {
	return p.Grades.Run(ctx, fileID)
}

func (p *Processor) ProcessSerialList(ctx context.Context, fileID string) (StageReport, error) {
	return p.Serials.Run(ctx, fileID)
}

// ProcessFile runs whichever stage matches the file's kind.
func (p *Processor) ProcessFile(ctx context.Context, fileID string) (StageReport, error) {
	f, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return StageReport{FileID: fileID}, err
	}
	switch f.Kind {
	case constants.GradeList:
		return p.ProcessGradeList(ctx, fileID)
	case constants.SerialNumberList:
		return p.ProcessSerialList(ctx, fileID)
	default:
		return StageReport{FileID: fileID}, common.NewAppError("WRONG_FILE_KIND",
			fmt.Sprintf("file %s has unknown kind %q", fileID, f.Kind), common.ErrInvalidInput)
	}
}

// BuildRoster merges the subject's stored grade and serial records. Grade
// records are ordered by Count and serial records by No before merging.
func (p *Processor) BuildRoster(ctx context.Context, subjectID string, opts roster.Options) (roster.Result, error) {
	s, err := p.Subjects.Get(ctx, subjectID)
	if err != nil {
		return roster.Result{}, err
	}
	grades, err := p.Students.ListGrades(ctx, s)
	if err != nil {
		return roster.Result{}, fmt.Errorf("list grade records: %w", err)
	}
	serials, err := p.Students.ListSerials(ctx, s)
	if err != nil {
		return roster.Result{}, fmt.Errorf("list serial records: %w", err)
	}

	sort.SliceStable(grades, func(i, j int) bool { return numericLess(grades[i].Count, grades[j].Count) })
	sort.SliceStable(serials, func(i, j int) bool { return numericLess(serials[i].No, serials[j].No) })

	res := p.Merger.Merge(grades, serials, opts)
	if res.NoMatch() {
		common.LoggerFromContext(ctx, p.Logger).Warn("roster.no_match",
			"subject_id", subjectID, "grades", len(grades), "serials", len(serials))
	}
	return res, nil
}

// ExportRoster builds the roster and renders it as XLSX.
func (p *Processor) ExportRoster(ctx context.Context, subjectID string, opts roster.Options) ([]byte, error) {
	res, err := p.BuildRoster(ctx, subjectID, opts)
	if err != nil {
		return nil, err
	}
	return p.Export.RosterXLSX(ctx, subjectID, res.Rows)
}

// RemoveSourceFile deletes the records derived from a file, then its
// metadata, then its blob.
func (p *Processor) RemoveSourceFile(ctx context.Context, fileID string) error {
	log := common.LoggerFromContext(ctx, p.Logger)

	f, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	s, err := p.Subjects.Get(ctx, f.SubjectID)
	if err != nil {
		return err
	}

	n, err := p.Students.Clear(ctx, s, f.Kind)
	if err != nil {
		return fmt.Errorf("clear derived records: %w", err)
	}
	if err := p.Files.Delete(ctx, f); err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	if err := p.Blobs.Delete(ctx, f.BlobRef); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	log.Info("file.removed", "file_id", fileID, "kind", f.Kind, "records", n)
	return nil
}

// numericLess orders numeric strings by value; anything non-numeric sorts last.
func numericLess(a, b string) bool {
	x, errA := strconv.Atoi(strings.TrimSpace(a))
	y, errB := strconv.Atoi(strings.TrimSpace(b))
	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	default:
		return false
	}
}
