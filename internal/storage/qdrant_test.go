//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

// setupTestStore creates a store against a local Qdrant with a throwaway
// collection. Skips when Qdrant is not running.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	collection := "fragments-test-" + uuid.New().String()
	store, err := NewStore("localhost", 6334, collection, testDimension)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureCollection(context.Background()))
	return store
}

func testEmbedding(fill float32) []float32 {
	v := make([]float32, testDimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestFragmentRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fragment := &Fragment{
		ID:          uuid.New().String(),
		Fingerprint: "abc123",
		Source:      "guide.pdf",
		Page:        3,
		Index:       1,
		Text:        "normalized fragment text",
		Embedding:   testEmbedding(0.1),
	}

	require.NoError(t, store.UpsertFragments(ctx, []*Fragment{fragment}))

	results, err := store.Query(ctx, testEmbedding(0.1), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, fragment.ID, got.ID)
	assert.Equal(t, fragment.Fingerprint, got.Fingerprint)
	assert.Equal(t, fragment.Source, got.Source)
	assert.Equal(t, fragment.Page, got.Page)
	assert.Equal(t, fragment.Index, got.Index)
	assert.Equal(t, fragment.Text, got.Text)
	assert.Greater(t, got.Score, 0.0)
}

func TestQuery_EmptyCollection(t *testing.T) {
	store := setupTestStore(t)

	results, err := store.Query(context.Background(), testEmbedding(0.5), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_FewerThanK(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fragments := make([]*Fragment, 3)
	for i := range fragments {
		fragments[i] = &Fragment{
			ID:          uuid.New().String(),
			Fingerprint: "digest",
			Source:      "small.pdf",
			Page:        1,
			Index:       i,
			Text:        "content",
			Embedding:   testEmbedding(0.2),
		}
	}
	require.NoError(t, store.UpsertFragments(ctx, fragments))

	results, err := store.Query(ctx, testEmbedding(0.2), 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestDimensionValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	wrong := &Fragment{
		ID:        uuid.New().String(),
		Text:      "bad vector",
		Embedding: make([]float32, testDimension/2),
	}
	err := store.UpsertFragments(ctx, []*Fragment{wrong})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = store.Query(ctx, make([]float32, testDimension/2), 10)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBatchUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// More than one batch of 100.
	fragments := make([]*Fragment, 250)
	for i := range fragments {
		fragments[i] = &Fragment{
			ID:          uuid.New().String(),
			Fingerprint: "batchdigest",
			Source:      "batch.pdf",
			Page:        1 + i/50,
			Index:       i % 50,
			Text:        "chunk content",
			Embedding:   testEmbedding(0.3),
		}
	}
	require.NoError(t, store.UpsertFragments(ctx, fragments))

	count, err := store.CountFragments(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), count)
}

func TestHasFragments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fragment := &Fragment{
		ID:          uuid.New().String(),
		Fingerprint: "present-digest",
		Source:      "doc.pdf",
		Page:        1,
		Index:       0,
		Text:        "text",
		Embedding:   testEmbedding(0.4),
	}
	require.NoError(t, store.UpsertFragments(ctx, []*Fragment{fragment}))

	found, err := store.HasFragments(ctx, "present-digest")
	require.NoError(t, err)
	assert.True(t, found)

	missing, err := store.HasFragments(ctx, "absent-digest")
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestPersistenceAcrossReconnect(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fragment := &Fragment{
		ID:          uuid.New().String(),
		Fingerprint: "persist-digest",
		Source:      "persist.pdf",
		Page:        1,
		Index:       0,
		Text:        "must survive reconnection",
		Embedding:   testEmbedding(0.6),
	}
	require.NoError(t, store.UpsertFragments(ctx, []*Fragment{fragment}))

	collection := store.collection
	require.NoError(t, store.Close())

	store2, err := NewStore("localhost", 6334, collection, testDimension)
	require.NoError(t, err)
	defer store2.Close()

	results, err := store2.Query(ctx, testEmbedding(0.6), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "must survive reconnection", results[0].Text)
}
