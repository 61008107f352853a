package vectorstore

// Document はベクトルストアに格納されるテキストと、その検索結果を表す
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"` // 検索時のみ設定（コサイン類似度、大きいほど近い）
}

// Record はテーブルの1行（本文 + Embedding）を表す
type Record struct {
	ID       string
	Body     string
	Vector   []float32
	Metadata map[string]string
}
