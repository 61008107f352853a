package vectorstore

import "errors"

var (
	// ErrEmptyQuery は検索クエリが空の場合のエラー
	ErrEmptyQuery = errors.New("query is required")

	// ErrDimensionMismatch は Embedding の次元数が設定と一致しない場合のエラー
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
