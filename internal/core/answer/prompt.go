package answer

import (
	"strings"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

// SystemPrompt は回答を20〜30語に制限するシステム指示
const SystemPrompt = "You help writing well formulated text summary from a given textual input and a question. Limit the response to 20 to 30 words"

// JoinContext は検索結果の本文を半角スペース1つで連結する
func JoinContext(docs []*vectorstore.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Content)
	}
	return strings.Join(parts, " ")
}

// BuildPrompt は質問とコンテキストからユーザーメッセージを構築する
func BuildPrompt(question, context string) string {
	return "Answer this question: " + question + " based on this context " + context
}
