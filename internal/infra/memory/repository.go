// Package memory はプロセス内で完結するベクトルテーブルを提供する。
package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

// Repository は全件走査のコサイン類似度検索を行うインメモリ実装
type Repository struct {
	mu        sync.RWMutex
	dimension int
	records   []*vectorstore.Record
}

// NewRepository は空の Repository を作成する
func NewRepository() *Repository {
	return &Repository{}
}

// EnsureSchema は次元を記録する。既存の次元と異なる場合はエラー
func (r *Repository) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dimension != 0 && r.dimension != dimension {
		return fmt.Errorf("%w: table has %d, requested %d", vectorstore.ErrDimensionMismatch, r.dimension, dimension)
	}
	r.dimension = dimension
	return nil
}

// Insert はレコードを追加する。同じIDは後勝ちで上書きする
func (r *Repository) Insert(ctx context.Context, records []*vectorstore.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if r.dimension != 0 && len(rec.Vector) != r.dimension {
			return fmt.Errorf("%w: row %s has %d, want %d", vectorstore.ErrDimensionMismatch, rec.ID, len(rec.Vector), r.dimension)
		}

		stored := &vectorstore.Record{
			ID:       rec.ID,
			Body:     rec.Body,
			Vector:   append([]float32(nil), rec.Vector...),
			Metadata: maps.Clone(rec.Metadata),
		}

		replaced := false
		for i, existing := range r.records {
			if existing.ID == rec.ID {
				r.records[i] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			r.records = append(r.records, stored)
		}
	}
	return nil
}

// Search はコサイン類似度の高い順に最大 limit 件を返す。同点は挿入順
func (r *Repository) Search(ctx context.Context, queryVector []float32, limit int) ([]*vectorstore.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*vectorstore.Document, 0, len(r.records))
	for _, rec := range r.records {
		docs = append(docs, &vectorstore.Document{
			ID:       rec.ID,
			Content:  rec.Body,
			Metadata: maps.Clone(rec.Metadata),
			Score:    float64(CosineSimilarity(queryVector, rec.Vector)),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})

	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

// Count は行数を返す
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// Truncate は全行を削除する。次元は保持する
func (r *Repository) Truncate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	return nil
}

// CosineSimilarity は2つのベクトルのコサイン類似度を返す（-1〜1）
// 長さが異なる場合やゼロベクトルの場合は 0
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// インターフェース実装の確認
var _ vectorstore.Repository = (*Repository)(nil)
