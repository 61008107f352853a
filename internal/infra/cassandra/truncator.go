package cassandra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/database"
)

// Truncator はリセットのたびに独立したセッションを開いてテーブルを TRUNCATE する
type Truncator struct {
	params database.ConnectionParams
	table  Table
	logger *slog.Logger
}

// NewTruncator は新しい Truncator を作成する
func NewTruncator(params database.ConnectionParams, table Table, logger *slog.Logger) *Truncator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Truncator{params: params, table: table, logger: logger}
}

// Reset は新しいセッションで TRUNCATE を発行し、セッションを閉じる
func (t *Truncator) Reset(ctx context.Context) error {
	session, err := database.Connect(ctx, t.params)
	if err != nil {
		return fmt.Errorf("failed to open reset session: %w", err)
	}
	defer session.Close()

	if err := session.Session.Query(t.table.truncateStatement()).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", t.table, err)
	}

	t.logger.Info("table truncated", "table", t.table.String())
	return nil
}
