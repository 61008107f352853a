package answer

import (
	"context"
	"errors"
)

// ChatClient の実装はこれらのエラーをラップして返す
var (
	// ErrNetwork は接続失敗など通信レベルのエラー
	ErrNetwork = errors.New("llm network error")

	// ErrTimeout はリクエストが時間内に完了しなかった場合のエラー
	ErrTimeout = errors.New("llm request timed out")

	// ErrAuthentication は API キーが無効・未設定の場合のエラー
	ErrAuthentication = errors.New("llm authentication failed")

	// ErrRateLimited はレート制限（HTTP 429）のエラー
	ErrRateLimited = errors.New("llm rate limited")

	// ErrMalformedResponse は choices が空など応答形式が不正な場合のエラー
	ErrMalformedResponse = errors.New("llm returned malformed response")

	// ErrProvider はその他のAPIエラー（5xx など）
	ErrProvider = errors.New("llm provider error")
)

// FailureKind は回答生成に失敗した理由の分類
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureNetwork           FailureKind = "network"
	FailureTimeout           FailureKind = "timeout"
	FailureAuthentication    FailureKind = "authentication"
	FailureRateLimit         FailureKind = "rate_limit"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureProvider          FailureKind = "provider"
	FailureUnknown           FailureKind = "unknown"
)

// Classify はエラーを FailureKind に分類する
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ErrAuthentication):
		return FailureAuthentication
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimit
	case errors.Is(err, ErrMalformedResponse):
		return FailureMalformedResponse
	case errors.Is(err, ErrNetwork):
		return FailureNetwork
	case errors.Is(err, ErrProvider):
		return FailureProvider
	default:
		return FailureUnknown
	}
}
