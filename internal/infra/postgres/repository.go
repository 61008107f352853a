// Package postgres は PostgreSQL + pgvector によるベクトルテーブルを提供する。
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/config"
	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/database"
)

// Table はスキーマ修飾済みのテーブル名
type Table struct {
	Schema string
	Name   string
}

// NewTable は識別子を検証して Table を作成する
func NewTable(schema, name string) (Table, error) {
	if err := config.ValidateIdentifier(schema); err != nil {
		return Table{}, fmt.Errorf("schema: %w", err)
	}
	if err := config.ValidateIdentifier(name); err != nil {
		return Table{}, fmt.Errorf("table: %w", err)
	}
	return Table{Schema: schema, Name: name}, nil
}

// String は "schema.table" 形式を返す
func (t Table) String() string {
	return t.Schema + "." + t.Name
}

func (t Table) schemaStatements(dimension int) []string {
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", t.Schema),
		fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (row_id TEXT PRIMARY KEY, body_blob TEXT NOT NULL, vector vector(%d) NOT NULL, metadata_s JSONB NOT NULL DEFAULT '{}'::jsonb, created_at TIMESTAMPTZ NOT NULL DEFAULT now())",
			t, dimension,
		),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_vector_idx ON %s USING hnsw (vector vector_cosine_ops)", t.Name, t),
	}
}

func (t Table) insertStatement() string {
	return fmt.Sprintf(
		`INSERT INTO %s (row_id, body_blob, vector, metadata_s) VALUES ($1, $2, $3::vector, $4)
ON CONFLICT (row_id) DO UPDATE SET body_blob = EXCLUDED.body_blob, vector = EXCLUDED.vector, metadata_s = EXCLUDED.metadata_s`,
		t,
	)
}

// searchStatement はコサイン距離の昇順で検索する。スコアは 1 - 距離
func (t Table) searchStatement() string {
	return fmt.Sprintf(
		`SELECT row_id, body_blob, metadata_s, 1 - (vector <=> $1::vector) AS score
FROM %s
ORDER BY vector <=> $1::vector, created_at
LIMIT $2`,
		t,
	)
}

// Repository は pgvector を使った vectorstore.Repository 実装
type Repository struct {
	pool  *pgxpool.Pool
	table Table
}

// NewRepository は新しい Repository を作成する
func NewRepository(pool *pgxpool.Pool, table Table) *Repository {
	return &Repository{pool: pool, table: table}
}

// EnsureSchema は拡張・スキーマ・テーブル・HNSW インデックスを作成する（冪等）
func (r *Repository) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}

	for _, stmt := range r.table.schemaStatements(dimension) {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema for %s: %w", r.table, err)
		}
	}
	return nil
}

// Insert はレコードを1トランザクションで書き込む
func (r *Repository) Insert(ctx context.Context, records []*vectorstore.Record) error {
	stmt := r.table.insertStatement()

	_, err := database.Transact(ctx, r.pool, func(tx pgx.Tx) (struct{}, error) {
		for _, rec := range records {
			metadata := rec.Metadata
			if metadata == nil {
				metadata = map[string]string{}
			}
			if _, err := tx.Exec(ctx, stmt, rec.ID, rec.Body, pgvector.NewVector(rec.Vector), metadata); err != nil {
				return struct{}{}, fmt.Errorf("failed to insert row %s: %w", rec.ID, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// Search はコサイン類似度の高い順に最大 limit 件を返す
func (r *Repository) Search(ctx context.Context, queryVector []float32, limit int) ([]*vectorstore.Document, error) {
	rows, err := r.pool.Query(ctx, r.table.searchStatement(), pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.table, err)
	}
	defer rows.Close()

	var docs []*vectorstore.Document
	for rows.Next() {
		doc := &vectorstore.Document{}
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata, &doc.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search rows: %w", err)
	}

	return docs, nil
}

// Count は行数を返す
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.table.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", r.table, err)
	}
	return int(n), nil
}

// Truncate は全行を削除する
func (r *Repository) Truncate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "TRUNCATE "+r.table.String()); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", r.table, err)
	}
	return nil
}

// インターフェース実装の確認
var _ vectorstore.Repository = (*Repository)(nil)
