package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// Prefix is prepended to every key, e.g. "nstp/".
	Prefix string
}

// OSSBlobStore keeps blobs in an Aliyun OSS bucket.
type OSSBlobStore struct {
	bucket *oss.Bucket
	prefix string
	logger *slog.Logger
}

func NewOSSBlobStore(cfg OSSConfig, logger *slog.Logger) (*OSSBlobStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" {
		return nil, errors.New("oss endpoint, credentials and bucket are required")
	}
	cli, err := oss.New(normalizeEndpoint(cfg.Endpoint), cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	b, err := cli.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %q: %w", cfg.Bucket, err)
	}
	return &OSSBlobStore{
		bucket: b,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" || strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}

func (s *OSSBlobStore) objectKey(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return k, nil
	}
	return path.Join(s.prefix, k), nil
}

func (s *OSSBlobStore) Put(ctx context.Context, key string, data []byte) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	if err := s.bucket.PutObject(k, bytes.NewReader(data), oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("oss put %s: %w", k, err)
	}
	s.logger.Debug("blob.put", "backend", "oss", "key", k, "bytes", len(data))
	return nil
}

func (s *OSSBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := s.bucket.GetObject(k, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, &common.MissingDependencyError{Kind: "blob", ID: key}
		}
		return nil, fmt.Errorf("oss get %s: %w", k, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("oss read %s: %w", k, err)
	}
	return b, nil
}

func (s *OSSBlobStore) Delete(ctx context.Context, key string) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	if err := s.bucket.DeleteObject(k, oss.WithContext(ctx)); err != nil && !isNotFound(err) {
		return fmt.Errorf("oss delete %s: %w", k, err)
	}
	s.logger.Debug("blob.delete", "backend", "oss", "key", k)
	return nil
}

func (s *OSSBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	k, err := s.objectKey(key)
	if err != nil {
		return false, err
	}
	ok, err := s.bucket.IsObjectExist(k, oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("oss head %s: %w", k, err)
	}
	return ok, nil
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound
	}
	return false
}
