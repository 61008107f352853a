package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/container"
)

// ProvisionAction はキースペース・テーブル・ベクトルインデックスを作成する（冪等）
func ProvisionAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"), container.WithoutLLM())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.Store.Init(ctx); err != nil {
		return fmt.Errorf("テーブルの作成に失敗: %w", err)
	}

	cfg := appCtx.Config
	appCtx.Logger().Info("ベクトルストアを準備しました",
		"backend", cfg.Backend,
		"keyspace", cfg.Cassandra.Keyspace,
		"table", cfg.Cassandra.Table,
		"replicationFactor", cfg.Cassandra.ReplicationFactor,
	)
	fmt.Fprintf(output(cmd), "vector store is ready (backend=%s)\n", cfg.Backend)
	return nil
}

// CountAction はテーブルの行数を表示する
func CountAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"), container.WithoutLLM())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.Store.Init(ctx); err != nil {
		return fmt.Errorf("ベクトルストアの初期化に失敗: %w", err)
	}

	n, err := appCtx.Container.Store.Count(ctx)
	if err != nil {
		return fmt.Errorf("行数の取得に失敗: %w", err)
	}

	fmt.Fprintln(output(cmd), n)
	return nil
}

// TruncateAction はテーブルを空にする（スキーマは残る）
func TruncateAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"), container.WithoutLLM())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.Store.Init(ctx); err != nil {
		return fmt.Errorf("ベクトルストアの初期化に失敗: %w", err)
	}

	if err := appCtx.Container.Resetter.Reset(ctx); err != nil {
		return fmt.Errorf("TRUNCATE に失敗: %w", err)
	}

	appCtx.Logger().Info("テーブルを空にしました")
	return nil
}
