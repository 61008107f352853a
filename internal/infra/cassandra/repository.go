// Package cassandra は Cassandra 5 の vector 型と SAI インデックスを使ったベクトルテーブルを提供する。
package cassandra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gocql/gocql"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

// Repository は1つのテーブルに対する vectorstore.Repository 実装
type Repository struct {
	session *gocql.Session
	table   Table
	logger  *slog.Logger
}

type RepositoryOption func(*Repository)

// WithRepositoryLogger はロガーを設定する
func WithRepositoryLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository は新しい Repository を作成する
func NewRepository(session *gocql.Session, table Table, opts ...RepositoryOption) *Repository {
	r := &Repository{
		session: session,
		table:   table,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureSchema はテーブルとベクトルインデックスを作成する（冪等）
func (r *Repository) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}

	if err := r.session.Query(r.table.createTableStatement(dimension)).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	if err := r.session.Query(r.table.createIndexStatement()).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to create vector index on %s: %w", r.table, err)
	}

	r.logger.Debug("cassandra schema ensured", "table", r.table.String(), "dimension", dimension)
	return nil
}

// Insert はレコードを1行ずつ書き込む
func (r *Repository) Insert(ctx context.Context, records []*vectorstore.Record) error {
	for _, rec := range records {
		literal, err := VectorLiteral(rec.Vector)
		if err != nil {
			return fmt.Errorf("row %s: %w", rec.ID, err)
		}

		metadata := rec.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}

		if err := r.session.Query(r.table.insertStatement(literal), rec.ID, rec.Body, metadata).
			WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Search はコサイン類似度の ANN 検索で最大 limit 件を返す
func (r *Repository) Search(ctx context.Context, queryVector []float32, limit int) ([]*vectorstore.Document, error) {
	literal, err := VectorLiteral(queryVector)
	if err != nil {
		return nil, err
	}

	iter := r.session.Query(r.table.searchStatement(literal), limit).WithContext(ctx).Iter()

	var (
		docs     []*vectorstore.Document
		rowID    string
		body     string
		metadata map[string]string
		score    float32
	)
	for iter.Scan(&rowID, &body, &metadata, &score) {
		docs = append(docs, &vectorstore.Document{
			ID:       rowID,
			Content:  body,
			Metadata: metadata,
			Score:    float64(score),
		})
		metadata = nil
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.table, err)
	}

	return docs, nil
}

// Count はテーブルの行数を返す
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.session.Query(r.table.countStatement()).WithContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", r.table, err)
	}
	return int(n), nil
}

// Truncate はテーブルの全行を削除する（スキーマは残る）
func (r *Repository) Truncate(ctx context.Context) error {
	if err := r.session.Query(r.table.truncateStatement()).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", r.table, err)
	}
	return nil
}

// インターフェース実装の確認
var _ vectorstore.Repository = (*Repository)(nil)
