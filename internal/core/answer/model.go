package answer

// ChatRequest はチャット補完リクエストを表す
type ChatRequest struct {
	System      string  // システム指示
	User        string  // ユーザーメッセージ（質問 + コンテキスト）
	MaxTokens   int     // 生成トークン上限
	Temperature float64 // 0 で決定的サンプリング
}

// Outcome は回答生成の結果。失敗時も値として返す
type Outcome struct {
	Text    string      // LLMによる回答（失敗時は空）
	Failure FailureKind // 失敗理由（成功時は FailureNone）
	Err     error       // 元のエラー（成功時は nil）
}

// OK は回答が得られたかを返す
func (o Outcome) OK() bool {
	return o.Failure == FailureNone
}

// String は回答文、失敗時は "None (<分類>)" を返す
func (o Outcome) String() string {
	if o.OK() {
		return o.Text
	}
	return "None (" + string(o.Failure) + ")"
}
