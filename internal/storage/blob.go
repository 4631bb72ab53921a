package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/joseph-ayodele/nstp-roster/constants"
	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

// BlobStore holds the raw uploaded files.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns *common.MissingDependencyError when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Path builds the blob key for an uploaded file:
// {ETOFile|CHEDFile}/{subjectId}/{fileId}/{fileName}.
func Path(kind constants.FileKind, subjectID, fileID, fileName string) string {
	return path.Join(kind.BlobRoot(), subjectID, fileID, path.Base(strings.ReplaceAll(fileName, "\\", "/")))
}

// New opens the backend selected by cfg.Backend.
func New(cfg common.BlobConfig, logger *slog.Logger) (BlobStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalBlobStore(cfg.LocalRoot, logger)
	case "oss":
		return NewOSSBlobStore(OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSAccessKey,
			AccessKeySecret: cfg.OSSSecretKey,
			Bucket:          cfg.OSSBucket,
			Prefix:          cfg.OSSObjectPrefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

// cleanKey rejects keys that could escape the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.HasPrefix(key, "/") {
		return "", common.NewAppError("BLOB_KEY", fmt.Sprintf("invalid blob key %q", key), common.ErrInvalidInput)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", common.NewAppError("BLOB_KEY", fmt.Sprintf("invalid blob key %q", key), common.ErrInvalidInput)
		}
	}
	return path.Clean(key), nil
}
