// Package tokenizer は tiktoken によるトークン数計測を提供する。
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
)

// DefaultEncoding は GPT 系モデルで使われるエンコーディング
const DefaultEncoding = "cl100k_base"

// Counter は tiktoken を利用した TokenCounter 実装
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter は指定エンコーディングの Counter を作成する
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}
	return &Counter{encoding: enc}, nil
}

// CountTokens はテキストのトークン数を返す
func (c *Counter) CountTokens(text string) int {
	if c == nil || c.encoding == nil {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// インターフェース実装の確認
var _ answer.TokenCounter = (*Counter)(nil)
