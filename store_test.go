package embd

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/poiesic/embd/ai/mock"
	"github.com/poiesic/embd/core"
	"github.com/poiesic/embd/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthEmbedder maps known texts to fixed vectors so tests can reason about
// exact similarities.
func synthEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0}, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if v, ok := vectors[text]; ok {
				out[i] = v
			} else {
				out[i] = []float32{0, 0, 0}
			}
		}
		return out, nil
	}
	return embedder
}

func newTestStore(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.embd")
	opts = append([]Option{WithProvider(mock.NewMockProviderWithEmbedder(embedder))}, opts...)
	store, err := NewStore(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAndGetScenario(t *testing.T) {
	// Synthetic embeddings with dimension 3: store doc1 twice, the second
	// write supersedes the first.
	embedder := synthEmbedder(map[string][]float32{
		"the fox":    {1, 0, 0},
		"about ml":   {0, 1, 0},
		"the fox v2": {0, 0, 1},
		"query fox2": {0, 0, 1},
	})
	store := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.StoreText(ctx, "doc1", "the fox"))
	require.NoError(t, store.StoreText(ctx, "doc2", "about ml"))
	require.NoError(t, store.StoreText(ctx, "doc1", "the fox v2"))

	entry, err := store.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, entry.Vector, "latest write wins")

	results, err := store.Search(ctx, "query fox2", WithLimit(1), WithMinSimilarity(0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc1", results[0].Key)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
}

func TestGetValidation(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())

	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func TestGetMissingFile(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())

	_, err := store.Get(context.Background(), "nothing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetMissingKey(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8
	store := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.StoreText(ctx, "present", "some text"))

	_, err := store.Get(ctx, "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchMissingFileReturnsEmpty(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())

	results, err := store.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchValidation(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := store.Search(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyQuery)

	_, err = store.Search(ctx, "q", WithLimit(0))
	assert.ErrorIs(t, err, core.ErrInvalidLimit)

	_, err = store.Search(ctx, "q", WithMinSimilarity(1.5))
	assert.ErrorIs(t, err, core.ErrInvalidThreshold)

	_, err = store.Search(ctx, "q", WithMinSimilarity(-0.1))
	assert.ErrorIs(t, err, core.ErrInvalidThreshold)
}

func TestSearchThresholdFiltering(t *testing.T) {
	embedder := synthEmbedder(map[string][]float32{
		"close":    {1, 0, 0},
		"diagonal": {1, 1, 0},
		"far":      {0, 0, 1},
		"query":    {1, 0, 0},
	})
	store := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.StoreText(ctx, "close", "close"))
	require.NoError(t, store.StoreText(ctx, "diagonal", "diagonal"))
	require.NoError(t, store.StoreText(ctx, "far", "far"))

	// cos(query, close)=1, cos(query, diagonal)~0.707, cos(query, far)=0
	results, err := store.Search(ctx, "query", WithMinSimilarity(0.9))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Key)

	results, err = store.Search(ctx, "query", WithMinSimilarity(0.5))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "close", results[0].Key)
	assert.Equal(t, "diagonal", results[1].Key)

	// Threshold 0 admits the orthogonal match too.
	results, err = store.Search(ctx, "query", WithMinSimilarity(0))
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchLimit(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 16
	store := newTestStore(t, embedder)
	ctx := context.Background()

	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{Key: fmt.Sprintf("doc-%d", i), Text: fmt.Sprintf("document number %d", i)}
	}
	require.NoError(t, store.StoreBatch(ctx, items))

	results, err := store.Search(ctx, "document number 3", WithLimit(5), WithMinSimilarity(0))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 5)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestStoreBatchValidation(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	err := store.StoreBatch(ctx, nil)
	assert.ErrorIs(t, err, core.ErrEmptyBatch)

	err = store.StoreBatch(ctx, []Item{{Key: "", Text: "x"}})
	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func TestStoreBatchCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 2, 3}}, nil // always one vector
	}
	store := newTestStore(t, embedder)

	err := store.StoreBatch(context.Background(), []Item{
		{Key: "a", Text: "first"},
		{Key: "b", Text: "second"},
	})
	assert.ErrorIs(t, err, core.ErrEmbeddingCountMismatch)
}

func TestStoreBatchSingleProviderCall(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 4
	store := newTestStore(t, embedder)

	items := []Item{
		{Key: "a", Text: "one"},
		{Key: "b", Text: "two"},
		{Key: "c", Text: "three"},
	}
	require.NoError(t, store.StoreBatch(context.Background(), items))
	assert.Equal(t, 1, embedder.CallCount(), "batch must invoke the provider once")
}

func TestStoreDimensionGuard(t *testing.T) {
	dim := 4
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return make([]float32, dim), nil
	}
	store := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.StoreText(ctx, "a", "first"))

	// Provider starts returning a different dimension, e.g. after a model
	// swap. The file's header dimension must win.
	dim = 8
	err := store.StoreText(ctx, "b", "second")
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestStoreEmbedded(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	entries := []core.StoredEntry{
		{Key: "a", Vector: []float32{1, 0}},
		{Key: "b", Vector: []float32{0, 1}},
	}
	require.NoError(t, store.StoreEmbedded(entries))

	entry, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, entry.Vector)

	err = store.StoreEmbedded(nil)
	assert.ErrorIs(t, err, core.ErrEmptyBatch)

	err = store.StoreEmbedded([]core.StoredEntry{
		{Key: "c", Vector: []float32{1, 2}},
		{Key: "d", Vector: []float32{1, 2, 3}},
	})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestProviderErrorWrapped(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("connection refused")
	}
	store := newTestStore(t, embedder)

	err := store.StoreText(context.Background(), "a", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider failure")
}

func TestInfoAndCount(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 6
	store := newTestStore(t, embedder)
	ctx := context.Background()

	_, err := store.Info(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.StoreText(ctx, "a", "one"))
	require.NoError(t, store.StoreText(ctx, "b", "two"))
	require.NoError(t, store.StoreText(ctx, "a", "one again"))

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), info.Dimension)
	assert.Equal(t, 2, info.Entries, "superseded versions do not count")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCloseReleasesProvider(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	path := filepath.Join(t.TempDir(), "store.embd")
	store, err := NewStore(path, WithProvider(provider))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.True(t, provider.Closed())

	// Closing an engine that never initialized a provider is a no-op.
	store2, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store2.Close())
}

func TestSearchScoresWithinBounds(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 32
	store := newTestStore(t, embedder)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.StoreText(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("text %d", i)))
	}

	results, err := store.Search(ctx, "text 5", WithMinSimilarity(0))
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, math.IsNaN(float64(r.Score)))
		assert.GreaterOrEqual(t, float64(r.Score), -1.0-1e-6)
		assert.LessOrEqual(t, float64(r.Score), 1.0+1e-6)
	}
}
