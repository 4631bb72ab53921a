package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
	"github.com/joseph-ayodele/nstp-roster/internal/repository"
	"github.com/joseph-ayodele/nstp-roster/internal/storage"
)

type Usecase struct {
	Subjects repository.SubjectRepository
	Files    repository.SourceFileRepository
	Blobs    storage.BlobStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewUsecase(s repository.SubjectRepository, f repository.SourceFileRepository, b storage.BlobStore, logger *slog.Logger) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		Subjects: s,
		Files:    f,
		Blobs:    b,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the blob and its metadata. Each subject holds at most one
// file per kind: identical bytes are deduplicated, different bytes are
// rejected until the existing file is removed.
func (u *Usecase) Upload(ctx context.Context, req UploadRequest) (IngestionResult, error) {
	log := common.LoggerFromContext(ctx, u.logger)
	var out IngestionResult

	if err := common.ValidateStruct(req); err != nil {
		return out, err
	}
	if !AllowedExt(req.Kind, req.FileName) {
		log.Warn("ingest.unsupported_extension", "kind", req.Kind, "file_name", req.FileName)
		return out, common.NewAppError("UNSUPPORTED_FILE",
			fmt.Sprintf("%s does not accept %q", req.Kind, filepath.Ext(req.FileName)), common.ErrInvalidInput)
	}
	if _, err := u.Subjects.Get(ctx, req.SubjectID); err != nil {
		return out, err
	}

	sum := sha256.Sum256(req.Data)
	hashHex := hex.EncodeToString(sum[:])

	existing, err := u.Files.FindBySubject(ctx, req.SubjectID, req.Kind)
	if err != nil {
		return out, err
	}
	if existing != nil {
		if existing.ContentHash != hashHex {
			return out, common.NewAppError("FILE_EXISTS",
				fmt.Sprintf("subject %s already has a %s file (%s); remove it first", req.SubjectID, req.Kind, existing.ID),
				common.ErrAlreadyExists)
		}
		log.Info("ingest.deduplicated", "file_id", existing.ID, "kind", req.Kind)
		return resultFor(*existing, true), nil
	}

	id := uuid.NewString()
	f := entity.SourceFile{
		ID:          id,
		SubjectID:   req.SubjectID,
		UserID:      req.UserID,
		FileName:    filepath.Base(req.FileName),
		BlobRef:     storage.Path(req.Kind, req.SubjectID, id, req.FileName),
		ContentHash: hashHex,
		Size:        len(req.Data),
		Kind:        req.Kind,
		Status:      constants.FileStatusUploaded,
		UploadedAt:  u.now(),
	}
	if err := u.Blobs.Put(ctx, f.BlobRef, req.Data); err != nil {
		log.Error("ingest.blob_failed", "blob_ref", f.BlobRef, "error", err)
		return out, fmt.Errorf("store blob: %w", err)
	}
	if err := u.Files.Put(ctx, f); err != nil {
		if derr := u.Blobs.Delete(ctx, f.BlobRef); derr != nil {
			log.Warn("ingest.blob_cleanup_failed", "blob_ref", f.BlobRef, "error", derr)
		}
		return out, fmt.Errorf("store file metadata: %w", err)
	}

	log.Info("ingest.ok", "file_id", f.ID, "kind", f.Kind, "bytes", f.Size, "subject_id", f.SubjectID)
	return resultFor(f, false), nil
}

// IngestPath reads path from disk and uploads it.
func (u *Usecase) IngestPath(ctx context.Context, subjectID, userID string, kind constants.FileKind, path string) (IngestionResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("abs path: %w", err)
	}
	if IsHidden(abs) {
		return IngestionResult{}, common.NewAppError("UNSUPPORTED_FILE", "hidden files are not ingested", common.ErrInvalidInput)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("read %s: %w", abs, err)
	}
	return u.Upload(ctx, UploadRequest{
		SubjectID: subjectID,
		UserID:    userID,
		Kind:      kind,
		FileName:  filepath.Base(abs),
		Data:      data,
	})
}

func resultFor(f entity.SourceFile, dedup bool) IngestionResult {
	return IngestionResult{
		FileID:       f.ID,
		Kind:         f.Kind,
		BlobRef:      f.BlobRef,
		Deduplicated: dedup,
		HashHex:      f.ContentHash,
		Size:         f.Size,
		UploadedAt:   f.UploadedAt,
	}
}
