package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

// Document is one JSON document addressed by collection path and id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// DocumentStore is a keyed JSON document store. Collection paths are plain
// strings such as "ListOfStudents/NSTP1-1st sem-2024-2025/students".
type DocumentStore interface {
	// UpsertBatch writes docs atomically: either all are stored or none.
	UpsertBatch(ctx context.Context, collection string, docs []Document) error
	// Get returns an error wrapping common.ErrNotFound when absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	// List returns every document in the collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	DeleteCollection(ctx context.Context, collection string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

const documentsTable = "documents"

func notFound(collection, id string) error {
	return fmt.Errorf("%s/%s: %w", collection, id, common.ErrNotFound)
}

// IsNotFound reports whether err came from a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

func getJSON[T any](ctx context.Context, s DocumentStore, collection, id string) (T, error) {
	var out T
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(doc.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return out, nil
}

func listJSON[T any](ctx context.Context, s DocumentStore, collection string) ([]T, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func putJSON(ctx context.Context, s DocumentStore, collection, id string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return s.UpsertBatch(ctx, collection, []Document{{ID: id, Data: b}})
}
