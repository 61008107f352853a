package demo

import (
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

const (
	// DefaultQuestion は既定で実行する質問
	DefaultQuestion = "Who uses Amazon Q?"
	// AlternateQuestion はもう一つの候補の質問
	AlternateQuestion = "Who jumped over the dog?"
	// DefaultK は検索で取得する件数
	DefaultK = 2
)

// SampleTexts は取り込むサンプル文
var SampleTexts = []string{
	"The quick brown fox jumps over the lazy dog",
	"The author of Cassandra as a Vector Store is Katerina Doneva",
	"Katerina does not know python programming however she uses AmazonQ to do it!",
	"Mateo also uses AmazonQ",
}

// Params は1回の実行パラメータ
type Params struct {
	Question string   // 空なら DefaultQuestion
	K        int      // 0以下なら DefaultK
	Keep     bool     // true なら最後の TRUNCATE を行わない
	Texts    []string // nil なら SampleTexts
}

// Report は実行結果
type Report struct {
	Question  string
	Inserted  int
	Results   []*vectorstore.Document
	Context   string
	Prompt    string
	Outcome   answer.Outcome
	Remaining int  // リセット後の行数（リセットしなかった場合は -1）
	Reset     bool // TRUNCATE を実行したか
}
