package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/async"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/export"
	"github.com/joseph-ayodele/nstp-roster/internal/extract"
	"github.com/joseph-ayodele/nstp-roster/internal/pdfrows"
	processor "github.com/joseph-ayodele/nstp-roster/internal/pipeline"
	repo "github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/roster"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

// tally counts finished queue jobs; Record may be called from several workers.
type tally struct {
	mu     sync.Mutex
	logger *slog.Logger
	failed []string
}

func (t *tally) Record(o async.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if o.Err != nil {
		t.failed = append(t.failed, o.Job.FileID)
		return
	}
	for _, issue := range o.Report.Issues {
		t.logger.Warn("row skipped", "file_id", o.Job.FileID, "issue", issue.String())
	}
}

// Err reports the files whose stage failed, if any.
func (t *tally) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d file(s) failed to process: %s", len(t.failed), strings.Join(t.failed, ", "))
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	var (
		inmem         = flag.Bool("inmem", false, "use in-memory SQLite and a temporary blob directory")
		eto           = flag.String("eto", "", "ETO grade list (xlsx or csv) (required)")
		ched          = flag.String("ched", "", "CHED serial-number list (pdf) (required)")
		out           = flag.String("out", "", "output XLSX file path (optional, defaults next to --eto)")
		strict        = flag.Bool("strict", false, "drop students that match more than one record")
		subjectName   = flag.String("subject-name", "", "subject title")
		subjectNumber = flag.String("subject", "NSTP1", "subject number")
		semester      = flag.String("semester", "1st sem", "semester")
		academicYear  = flag.String("ay", "", "academic year YYYY-YYYY (required)")
		userID        = flag.String("user", "local-batch", "uploading user id")
	)
	flag.Parse()

	if *eto == "" || *ched == "" || *academicYear == "" {
		printError("Error: --eto, --ched and --ay are required\n")
		return 1
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*eto), export.FileName)
	}

	if err := common.LoadDotEnv(); err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = ":memory:"
		dir, err := os.MkdirTemp("", "roster-blobs-")
		if err != nil {
			printError("Error: temp dir: %v\n", err)
			return 1
		}
		defer func() { _ = os.RemoveAll(dir) }()
		cfg.Blob.Backend = "local"
		cfg.Blob.LocalRoot = dir
	}
	if *strict {
		cfg.Pipeline.StrictMatching = true
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := common.WithUserID(context.Background(), *userID)

	store, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		return 1
	}
	defer repo.Close(store, logger)

	blobs, err := storage.New(cfg.Blob, logger)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		return 1
	}

	pdfCfg := pdfrows.DefaultConfig()
	if cfg.Pipeline.PDFLayoutFile != "" {
		if pdfCfg, err = pdfrows.LoadConfig(cfg.Pipeline.PDFLayoutFile); err != nil {
			logger.Error("failed to load pdf layout", "path", cfg.Pipeline.PDFLayoutFile, "error", err)
			return 1
		}
	}
	rows, err := pdfrows.New(pdfCfg, nil, logger)
	if err != nil {
		logger.Error("failed to build pdf extractor", "error", err)
		return 1
	}

	// Wire repositories
	subjectsRepo := repo.NewSubjectRepository(store, logger)
	filesRepo := repo.NewSourceFileRepository(store, logger)
	persister := repo.NewBatchPersister(store, repo.BatchConfig{
		BatchSize:   cfg.Pipeline.PersistBatchSize,
		Concurrency: cfg.Pipeline.PersistConcurrency,
	}, logger)
	studentsRepo := repo.NewStudentRepository(store, persister, logger)

	gradeStage, err := processor.NewGradeStage(filesRepo, subjectsRepo, studentsRepo, blobs, extract.NewTabular(logger), logger)
	if err != nil {
		logger.Error("failed to build grade stage", "error", err)
		return 1
	}
	serialStage, err := processor.NewSerialStage(filesRepo, subjectsRepo, studentsRepo, blobs, rows, logger)
	if err != nil {
		logger.Error("failed to build serial stage", "error", err)
		return 1
	}
	proc := processor.NewProcessor(logger, subjectsRepo, filesRepo, studentsRepo, blobs, gradeStage, serialStage)

	subject, err := proc.CreateSubject(ctx, processor.SubjectInput{
		SubjectName:   *subjectName,
		SubjectNumber: *subjectNumber,
		Semester:      *semester,
		AcademicYear:  *academicYear,
		UserID:        *userID,
	})
	if err != nil {
		logger.Error("failed to create subject", "error", err)
		return 1
	}
	logger.Info("using subject", "id", subject.ID, "term", subject.TermKey())

	jobs := &tally{logger: logger}
	queue := async.NewProcessorQueue(proc, logger, async.WithWorkers(2), async.WithOnDone(jobs.Record))

	for _, in := range []struct {
		kind constants.FileKind
		path string
	}{
		{constants.GradeList, *eto},
		{constants.SerialNumberList, *ched},
	} {
		res, err := proc.Ingest.IngestPath(ctx, subject.ID, *userID, in.kind, in.path)
		if err != nil {
			logger.Error("failed to ingest file", "path", in.path, "kind", in.kind, "error", err)
			queue.Shutdown(ctx)
			return 1
		}
		if err := queue.Enqueue(ctx, async.Job{FileID: res.FileID, TraceID: subject.ID}); err != nil {
			logger.Error("failed to enqueue file", "file_id", res.FileID, "error", err)
			queue.Shutdown(ctx)
			return 1
		}
	}
	queue.Shutdown(ctx)
	if err := jobs.Err(); err != nil {
		logger.Error("no roster written", "error", err)
		printError("Error: %v\n", err)
		return 1
	}

	result, err := proc.BuildRoster(ctx, subject.ID, roster.Options{Strict: cfg.Pipeline.StrictMatching})
	if err != nil {
		logger.Error("failed to build roster", "error", err)
		return 1
	}
	xlsxBytes, err := proc.Export.RosterXLSX(ctx, subject.ID, result.Rows)
	if err != nil {
		logger.Error("failed to export roster", "error", err)
		return 1
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		return 1
	}

	logger.Info("batch processing complete",
		"rows", len(result.Rows),
		"unmatched_grades", len(result.UnmatchedGrades),
		"unmatched_serials", len(result.UnmatchedSerials),
		"ambiguous", len(result.Ambiguous),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Roster rows: %d\n", len(result.Rows))
	fmt.Printf("- Unmatched grade records: %d\n", len(result.UnmatchedGrades))
	fmt.Printf("- Unmatched serial records: %d\n", len(result.UnmatchedSerials))
	fmt.Printf("- Output: %s\n", *out)
	return 0
}
