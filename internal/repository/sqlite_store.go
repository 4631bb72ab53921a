package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// SQLiteStore is a DocumentStore over a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	sb     squirrel.StatementBuilderType
	logger *slog.Logger
}

// OpenSQLite opens (and migrates) the database at dsn. Use ":memory:" for a
// throwaway store.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening sqlite store", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: logger,
	}, nil
}

func (s *SQLiteStore) UpsertBatch(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	ins := s.sb.Insert(documentsTable).Columns("collection", "id", "data", "updated_at")
	for _, d := range docs {
		ins = ins.Values(collection, d.ID, string(d.Data), now)
	}
	query, args, err := ins.
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		s.logger.Error("failed to upsert documents", "collection", collection, "count", len(docs), "error", err)
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query, args, err := s.sb.Select("data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return Document{}, fmt.Errorf("build get: %w", err)
	}
	var data string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, notFound(collection, id)
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Data: []byte(data)}, nil
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]Document, error) {
	query, args, err := s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, Document{ID: id, Data: []byte(data)})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.sb.Delete(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	query, args, err := s.sb.Delete(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
