package vectorstore

import (
	"context"
)

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
	// BatchEmbed は複数テキストのEmbeddingを入力順に生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension はベクトル次元数を返す
	Dimension() int
	// ModelName はモデル名を返す
	ModelName() string
	// MaxBatchSize は1リクエストあたりの最大件数を返す
	MaxBatchSize() int
}

// Repository はベクトルテーブルへのデータアクセスインターフェース
// テスト時のモック用に消費者側で定義
type Repository interface {
	// EnsureSchema はテーブルとベクトルインデックスを冪等に作成する
	EnsureSchema(ctx context.Context, dimension int) error

	// Insert はレコードを1件1行で書き込む（重複排除はしない）
	Insert(ctx context.Context, records []*Record) error

	// Search はクエリベクトルに近い順に最大 limit 件を返す
	Search(ctx context.Context, queryVector []float32, limit int) ([]*Document, error)

	// Count はテーブルの行数を返す
	Count(ctx context.Context) (int, error)

	// Truncate はスキーマを残したまま全行を削除する
	Truncate(ctx context.Context) error
}
