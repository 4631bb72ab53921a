package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore wraps a store, counting UpsertBatch calls and failing the
// call numbered failOn (1-based, 0 = never).
type recordingStore struct {
	DocumentStore
	mu     sync.Mutex
	calls  int
	sizes  []int
	failOn int
}

func (r *recordingStore) UpsertBatch(ctx context.Context, collection string, docs []Document) error {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.sizes = append(r.sizes, len(docs))
	r.mu.Unlock()
	if call == r.failOn {
		return errors.New("quota exceeded")
	}
	return r.DocumentStore.UpsertBatch(ctx, collection, docs)
}

type row struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{Key: string(rune('a'+i%26)) + string(rune('a'+i/26)), Value: i}
	}
	return out
}

func keyOf(r row) string { return r.Key }

func TestWriteAll_ChunksIntoGroups(t *testing.T) {
	ctx := context.Background()
	rs := &recordingStore{DocumentStore: newMemStore(t)}
	p := NewBatchPersister(rs, BatchConfig{BatchSize: 4}, nil)

	n, err := WriteAll(ctx, p, "things", keyOf, rows(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []int{4, 4, 2}, rs.sizes)

	docs, err := rs.List(ctx, "things")
	require.NoError(t, err)
	assert.Len(t, docs, 10)
}

func TestWriteAll_DedupAndBlankKeys(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	p := NewBatchPersister(store, BatchConfig{}, nil)

	recs := []row{{Key: "k1", Value: 1}, {Key: " ", Value: 2}, {Key: "k1", Value: 3}, {Key: "k2", Value: 4}}
	n, err := WriteAll(ctx, p, "things", keyOf, recs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err := store.Get(ctx, "things", "k1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"k1","value":3}`, string(doc.Data))
}

func TestWriteAll_FailedGroupKeepsCommitted(t *testing.T) {
	ctx := context.Background()
	rs := &recordingStore{DocumentStore: newMemStore(t), failOn: 2}
	p := NewBatchPersister(rs, BatchConfig{BatchSize: 3}, nil)

	n, err := WriteAll(ctx, p, "things", keyOf, rows(9))
	require.Error(t, err)
	assert.Equal(t, 3, n)

	docs, err := rs.List(ctx, "things")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestWriteAll_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	p := NewBatchPersister(store, BatchConfig{BatchSize: 5, Concurrency: 4}, nil)

	n, err := WriteAll(ctx, p, "things", keyOf, rows(52))
	require.NoError(t, err)
	assert.Equal(t, 52, n)

	docs, err := store.List(ctx, "things")
	require.NoError(t, err)
	assert.Len(t, docs, 52)
}

func TestWriteAll_Empty(t *testing.T) {
	p := NewBatchPersister(newMemStore(t), BatchConfig{}, nil)
	n, err := WriteAll(context.Background(), p, "things", keyOf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
