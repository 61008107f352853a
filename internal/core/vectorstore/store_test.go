package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	dim        int
	batchSize  int
	batchCalls [][]string
	queries    []string
	err        error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.queries = append(e.queries, text)
	if e.err != nil {
		return nil, e.err
	}
	return make([]float32, e.dim), nil
}

func (e *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls = append(e.batchCalls, texts)
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dim)
	}
	return vectors, nil
}

func (e *stubEmbedder) Dimension() int    { return e.dim }
func (e *stubEmbedder) ModelName() string { return "stub" }
func (e *stubEmbedder) MaxBatchSize() int { return e.batchSize }

type stubRepo struct {
	schemaDim int
	inserted  []*Record
	results   []*Document
	lastLimit int
	truncated bool
	err       error
}

func (r *stubRepo) EnsureSchema(ctx context.Context, dimension int) error {
	r.schemaDim = dimension
	return r.err
}

func (r *stubRepo) Insert(ctx context.Context, records []*Record) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, records...)
	return nil
}

func (r *stubRepo) Search(ctx context.Context, queryVector []float32, limit int) ([]*Document, error) {
	r.lastLimit = limit
	return r.results, r.err
}

func (r *stubRepo) Count(ctx context.Context) (int, error) {
	return len(r.inserted), r.err
}

func (r *stubRepo) Truncate(ctx context.Context) error {
	r.truncated = true
	r.inserted = nil
	return r.err
}

func newTestStore(repo *stubRepo, emb *stubEmbedder) *Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seq := 0
	return NewStore(repo, emb,
		WithStoreLogger(logger),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("row-%d", seq)
		}),
	)
}

func TestStore_InitUsesEmbedderDimension(t *testing.T) {
	repo := &stubRepo{}
	store := newTestStore(repo, &stubEmbedder{dim: 384})

	require.NoError(t, store.Init(context.Background()))
	assert.Equal(t, 384, repo.schemaDim)
}

func TestStore_AddTextsWritesOneRowPerText(t *testing.T) {
	repo := &stubRepo{}
	emb := &stubEmbedder{dim: 3}
	store := newTestStore(repo, emb)

	texts := []string{"a", "b", "c", "d"}
	ids, err := store.AddTexts(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, []string{"row-1", "row-2", "row-3", "row-4"}, ids)
	require.Len(t, repo.inserted, 4)
	for i, rec := range repo.inserted {
		assert.Equal(t, texts[i], rec.Body)
		assert.Len(t, rec.Vector, 3)
	}
}

func TestStore_AddTextsAllowsDuplicates(t *testing.T) {
	repo := &stubRepo{}
	store := newTestStore(repo, &stubEmbedder{dim: 2})

	_, err := store.AddTexts(context.Background(), []string{"same"})
	require.NoError(t, err)
	_, err = store.AddTexts(context.Background(), []string{"same"})
	require.NoError(t, err)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_AddTextsSplitsBatches(t *testing.T) {
	repo := &stubRepo{}
	emb := &stubEmbedder{dim: 2, batchSize: 3}
	store := newTestStore(repo, emb)

	_, err := store.AddTexts(context.Background(), []string{"1", "2", "3", "4", "5"})
	require.NoError(t, err)

	require.Len(t, emb.batchCalls, 2)
	assert.Len(t, emb.batchCalls[0], 3)
	assert.Len(t, emb.batchCalls[1], 2)
	assert.Len(t, repo.inserted, 5)
}

func TestStore_AddTextsEmptyIsNoop(t *testing.T) {
	repo := &stubRepo{}
	emb := &stubEmbedder{dim: 2}
	store := newTestStore(repo, emb)

	ids, err := store.AddTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, emb.batchCalls)
}

func TestStore_AddDocumentsKeepsMetadataAndIDs(t *testing.T) {
	repo := &stubRepo{}
	store := newTestStore(repo, &stubEmbedder{dim: 2})

	ids, err := store.AddDocuments(context.Background(), []*Document{
		{ID: "fixed", Content: "x", Metadata: map[string]string{"source": "notes.txt"}},
		{Content: "y"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fixed", "row-1"}, ids)
	assert.Equal(t, "notes.txt", repo.inserted[0].Metadata["source"])
}

func TestStore_AddTextsPropagatesFailures(t *testing.T) {
	embedErr := errors.New("model not loaded")
	_, err := newTestStore(&stubRepo{}, &stubEmbedder{dim: 2, err: embedErr}).
		AddTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, embedErr)

	writeErr := errors.New("write timeout")
	_, err = newTestStore(&stubRepo{err: writeErr}, &stubEmbedder{dim: 2}).
		AddTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, writeErr)
}

type wrongDimEmbedder struct{ stubEmbedder }

func (e *wrongDimEmbedder) Dimension() int { return e.dim + 1 }

func TestStore_DimensionMismatch(t *testing.T) {
	store := newTestStore(&stubRepo{}, &stubEmbedder{dim: 2})
	store.embedder = &wrongDimEmbedder{stubEmbedder{dim: 2}}

	_, err := store.AddTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = store.SimilaritySearch(context.Background(), "a", 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStore_SimilaritySearch(t *testing.T) {
	tests := []struct {
		name      string
		k         int
		results   []*Document
		wantLimit int
		wantLen   int
	}{
		{
			name:      "kをそのままリポジトリへ渡す",
			k:         2,
			results:   []*Document{{Content: "a"}, {Content: "b"}},
			wantLimit: 2,
			wantLen:   2,
		},
		{
			name:      "k未指定はデフォルト値",
			k:         0,
			results:   []*Document{{Content: "a"}},
			wantLimit: DefaultK,
			wantLen:   1,
		},
		{
			name:      "行数がk未満なら少ない件数を返す",
			k:         10,
			results:   []*Document{{Content: "a"}},
			wantLimit: 10,
			wantLen:   1,
		},
		{
			name:      "空テーブルは空結果",
			k:         2,
			results:   nil,
			wantLimit: 2,
			wantLen:   0,
		},
		{
			name:      "リポジトリがkを超えて返してもk件に切り詰める",
			k:         1,
			results:   []*Document{{Content: "a"}, {Content: "b"}},
			wantLimit: 1,
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{results: tt.results}
			emb := &stubEmbedder{dim: 2}
			store := newTestStore(repo, emb)

			docs, err := store.SimilaritySearch(context.Background(), "Who uses Amazon Q?", tt.k)
			require.NoError(t, err)
			assert.Len(t, docs, tt.wantLen)
			assert.Equal(t, tt.wantLimit, repo.lastLimit)
			assert.Equal(t, []string{"Who uses Amazon Q?"}, emb.queries)
		})
	}
}

func TestStore_SimilaritySearchRejectsEmptyQuery(t *testing.T) {
	emb := &stubEmbedder{dim: 2}
	_, err := newTestStore(&stubRepo{}, emb).SimilaritySearch(context.Background(), "  ", 2)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, emb.queries)
}

func TestStore_Clear(t *testing.T) {
	repo := &stubRepo{}
	store := newTestStore(repo, &stubEmbedder{dim: 2})

	_, err := store.AddTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, store.Clear(context.Background()))

	assert.True(t, repo.truncated)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewRowID(t *testing.T) {
	id := newRowID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, newRowID())
}
