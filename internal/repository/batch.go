package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/nstp-roster/constants"
)

type BatchConfig struct {
	// BatchSize is the largest group committed in one transaction.
	BatchSize int
	// Concurrency bounds how many groups commit at once.
	Concurrency int
}

// BatchPersister writes keyed records in bounded atomic groups.
type BatchPersister struct {
	store  DocumentStore
	cfg    BatchConfig
	logger *slog.Logger
}

func NewBatchPersister(store DocumentStore, cfg BatchConfig, logger *slog.Logger) *BatchPersister {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = constants.DefaultPersistBatchMax
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &BatchPersister{store: store, cfg: cfg, logger: logger}
}

// WriteAll upserts records under path keyed by keyFn and returns how many
// documents were committed. A repeated key keeps the last record. Records with
// a blank key are skipped. Groups that committed before a failure stay
// committed.
func WriteAll[T any](ctx context.Context, p *BatchPersister, path string, keyFn func(T) string, records []T) (int, error) {
	index := make(map[string]int, len(records))
	docs := make([]Document, 0, len(records))
	for i, rec := range records {
		key := strings.TrimSpace(keyFn(rec))
		if key == "" {
			p.logger.Warn("persist.skip_blank_key", "path", path, "index", i+1)
			continue
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encode record %d: %w", i+1, err)
		}
		if at, dup := index[key]; dup {
			docs[at].Data = b
			continue
		}
		index[key] = len(docs)
		docs = append(docs, Document{ID: key, Data: b})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	var committed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for start := 0; start < len(docs); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(docs))
		group := docs[start:end]
		g.Go(func() error {
			if err := p.store.UpsertBatch(gctx, path, group); err != nil {
				return err
			}
			committed.Add(int64(len(group)))
			return nil
		})
	}
	err := g.Wait()
	n := int(committed.Load())
	if err != nil {
		p.logger.Error("persist.failed", "path", path, "committed", n, "total", len(docs), "error", err)
		return n, fmt.Errorf("persist %s: %w", path, err)
	}
	p.logger.Info("persist.ok", "path", path, "documents", n, "groups", (len(docs)+p.cfg.BatchSize-1)/p.cfg.BatchSize)
	return n, nil
}
