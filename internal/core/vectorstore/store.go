package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// DefaultK は k 未指定時の検索件数
const DefaultK = 4

// Store は Embedder と固定テーブルを束ねたベクトルストアのハンドル
type Store struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
	newID    func() string
}

type StoreOption func(*Store)

// WithStoreLogger は Store にロガーを設定する
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator は行IDの生成関数を差し替える
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore は新しい Store を作成する
func NewStore(repo Repository, embedder Embedder, opts ...StoreOption) *Store {
	s := &Store{
		repo:     repo,
		embedder: embedder,
		logger:   slog.Default(),
		newID:    newRowID,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// newRowID は UUIDv4 をハイフンなしの16進文字列で返す
func newRowID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Init は Embedder の次元数でテーブルとインデックスを準備する
func (s *Store) Init(ctx context.Context) error {
	dim := s.embedder.Dimension()
	if err := s.repo.EnsureSchema(ctx, dim); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	s.logger.Info("vector store ready",
		"model", s.embedder.ModelName(),
		"dimension", dim,
	)
	return nil
}

// AddTexts は各テキストを埋め込み、1テキスト1行で書き込む
func (s *Store) AddTexts(ctx context.Context, texts []string) ([]string, error) {
	docs := make([]*Document, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, &Document{Content: text})
	}
	return s.AddDocuments(ctx, docs)
}

// AddDocuments はメタデータ付きのドキュメントを書き込み、採番した行IDを返す
func (s *Store) AddDocuments(ctx context.Context, docs []*Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	batchSize := s.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = len(docs)
	}

	ids := make([]string, 0, len(docs))
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}

		vectors, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed texts: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		records := make([]*Record, len(batch))
		for i, doc := range batch {
			if err := s.checkDimension(vectors[i]); err != nil {
				return nil, err
			}

			id := doc.ID
			if id == "" {
				id = s.newID()
			}
			records[i] = &Record{
				ID:       id,
				Body:     doc.Content,
				Vector:   vectors[i],
				Metadata: doc.Metadata,
			}
			ids = append(ids, id)
		}

		if err := s.repo.Insert(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to insert records: %w", err)
		}
	}

	s.logger.Info("texts added", "rows", len(ids))
	return ids, nil
}

// SimilaritySearch はクエリに近い順に最大 k 件のドキュメントを返す
// 行数が k 未満の場合はある分だけを返す
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]*Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultK
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := s.checkDimension(queryVector); err != nil {
		return nil, err
	}

	docs, err := s.repo.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	if len(docs) > k {
		docs = docs[:k]
	}

	s.logger.Debug("similarity search completed", "query", query, "k", k, "results", len(docs))
	return docs, nil
}

// Count はテーブルの行数を返す
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// Clear はテーブルを TRUNCATE する
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate: %w", err)
	}
	return nil
}

func (s *Store) checkDimension(vector []float32) error {
	if want := s.embedder.Dimension(); want > 0 && len(vector) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), want)
	}
	return nil
}
