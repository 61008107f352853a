// Package textsplit はファイル取り込み用にテキストをチャンクへ分割する。
package textsplit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

const (
	// DefaultChunkSize はチャンクの最大文字数
	DefaultChunkSize = 500
	// DefaultChunkOverlap は隣接チャンクの重なり文字数
	DefaultChunkOverlap = 50

	// MetadataSource は取り込み元を表すメタデータキー
	MetadataSource = "source"
	// MetadataChunk はチャンク番号を表すメタデータキー
	MetadataChunk = "chunk"
)

// Splitter は段落・行・空白の順に区切る再帰的な文字分割器
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

// NewSplitter は新しい Splitter を作成する
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = min(DefaultChunkOverlap, chunkSize/2)
	}

	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " "}),
		),
	}
}

// Split はテキストを空でないチャンクに分割する
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// SplitDocuments はテキストを分割し、取り込み元とチャンク番号を付けたドキュメントにする
func (s *Splitter) SplitDocuments(source, text string) ([]*vectorstore.Document, error) {
	chunks, err := s.Split(text)
	if err != nil {
		return nil, err
	}

	docs := make([]*vectorstore.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = &vectorstore.Document{
			Content: chunk,
			Metadata: map[string]string{
				MetadataSource: source,
				MetadataChunk:  strconv.Itoa(i),
			},
		}
	}
	return docs, nil
}
