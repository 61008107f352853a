package answer

import (
	"context"
	"log/slog"
)

const (
	// DefaultMaxTokens は生成トークン上限のデフォルト
	DefaultMaxTokens = 256

	// DefaultTemperature は決定的サンプリング
	DefaultTemperature = 0.0
)

// ChatClient はチャット補完APIとの通信インターフェース
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// TokenCounter はプロンプトのトークン数を数える
type TokenCounter interface {
	CountTokens(text string) int
}

// Synthesizer は検索結果を基にLLMで短い回答を生成する
type Synthesizer struct {
	client       ChatClient
	systemPrompt string
	maxTokens    int
	temperature  float64
	tokenCounter TokenCounter
	logger       *slog.Logger
}

type SynthesizerOption func(*Synthesizer)

// WithSynthesizerLogger は Synthesizer にロガーを設定する
func WithSynthesizerLogger(logger *slog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// WithMaxTokens は生成トークン上限を上書きする
func WithMaxTokens(maxTokens int) SynthesizerOption {
	return func(s *Synthesizer) {
		s.maxTokens = maxTokens
	}
}

// WithTemperature はサンプリング温度を上書きする
func WithTemperature(temperature float64) SynthesizerOption {
	return func(s *Synthesizer) {
		s.temperature = temperature
	}
}

// WithTokenCounter はプロンプトのトークン数計測を有効にする
func WithTokenCounter(counter TokenCounter) SynthesizerOption {
	return func(s *Synthesizer) {
		s.tokenCounter = counter
	}
}

// NewSynthesizer は新しい Synthesizer を作成する
func NewSynthesizer(client ChatClient, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		client:       client,
		systemPrompt: SystemPrompt,
		maxTokens:    DefaultMaxTokens,
		temperature:  DefaultTemperature,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Synthesize はプロンプトを1回だけLLMに送り、結果を Outcome として返す
// 失敗はエラーとして伝播させず、分類して Outcome に格納する
func (s *Synthesizer) Synthesize(ctx context.Context, prompt string) Outcome {
	if s.tokenCounter != nil {
		s.logger.Debug("prompt tokens", "tokens", s.tokenCounter.CountTokens(s.systemPrompt+prompt))
	}

	text, err := s.client.Complete(ctx, ChatRequest{
		System:      s.systemPrompt,
		User:        prompt,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		kind := Classify(err)
		s.logger.Warn("answer generation failed",
			"failure", string(kind),
			"error", err,
		)
		return Outcome{Failure: kind, Err: err}
	}

	s.logger.Info("answer generated", "answerLength", len(text))
	return Outcome{Text: text}
}
