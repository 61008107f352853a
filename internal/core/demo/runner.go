// Package demo はサンプル文の取り込みから回答生成、テーブルのリセットまでを1回で実行する。
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

// Store はベクトルストアの操作インターフェース
type Store interface {
	Init(ctx context.Context) error
	AddTexts(ctx context.Context, texts []string) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, k int) ([]*vectorstore.Document, error)
	Count(ctx context.Context) (int, error)
}

// Synthesizer は回答生成インターフェース
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) answer.Outcome
}

// Resetter は次回実行のためにテーブルを空にする
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetFunc は関数を Resetter として扱うアダプタ
type ResetFunc func(ctx context.Context) error

// Reset は f(ctx) を呼ぶ
func (f ResetFunc) Reset(ctx context.Context) error {
	return f(ctx)
}

// Runner は取り込み・検索・回答生成・リセットを順に実行する
type Runner struct {
	store       Store
	synthesizer Synthesizer
	resetter    Resetter
	logger      *slog.Logger
}

type RunnerOption func(*Runner)

// WithRunnerLogger は Runner にロガーを設定する
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner は新しい Runner を作成する
func NewRunner(store Store, synthesizer Synthesizer, resetter Resetter, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:       store,
		synthesizer: synthesizer,
		resetter:    resetter,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run はスキーマ準備、サンプル取り込み、検索、回答生成、リセットを順に行う
// 取り込み・検索の失敗はエラーとして返す。回答生成の失敗は Report.Outcome に入る
func (r *Runner) Run(ctx context.Context, params Params) (*Report, error) {
	texts := params.Texts
	if texts == nil {
		texts = slices.Clone(SampleTexts)
	}

	if err := r.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	ids, err := r.store.AddTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to add texts: %w", err)
	}
	r.logger.Info("sample texts ingested", "rows", len(ids))

	report, err := r.Ask(ctx, params.Question, params.K)
	if err != nil {
		return nil, err
	}
	report.Inserted = len(ids)

	if params.Keep {
		r.logger.Info("table reset skipped")
		return report, nil
	}

	if err := r.resetter.Reset(ctx); err != nil {
		return report, fmt.Errorf("failed to reset table: %w", err)
	}
	report.Reset = true

	remaining, err := r.store.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to count remaining rows: %w", err)
	}
	report.Remaining = remaining

	return report, nil
}

// Ask は既存のテーブルに対して検索と回答生成だけを行う
func (r *Runner) Ask(ctx context.Context, question string, k int) (*Report, error) {
	if question == "" {
		question = DefaultQuestion
	}
	if k <= 0 {
		k = DefaultK
	}

	results, err := r.store.SimilaritySearch(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	r.logger.Info("similarity search completed", "question", question, "k", k, "results", len(results))

	contextText := answer.JoinContext(results)
	prompt := answer.BuildPrompt(question, contextText)

	outcome := r.synthesizer.Synthesize(ctx, prompt)

	return &Report{
		Question:  question,
		Results:   results,
		Context:   contextText,
		Prompt:    prompt,
		Outcome:   outcome,
		Remaining: -1,
	}, nil
}
