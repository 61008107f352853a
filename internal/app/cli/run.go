package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/demo"
)

// RunAction はサンプル文の取り込みから回答生成、テーブルのリセットまでを実行する
func RunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	params := demo.Params{
		Question: cmd.String("question"),
		K:        cmd.Int("k"),
		Keep:     cmd.Bool("keep"),
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	appCtx.Logger().Info("デモを開始",
		"backend", appCtx.Config.Backend,
		"question", params.Question,
		"k", params.K,
		"keep", params.Keep,
	)

	report, err := appCtx.Container.Runner.Run(ctx, params)
	if report != nil {
		if printErr := report.Print(output(cmd)); printErr != nil {
			return fmt.Errorf("結果の出力に失敗: %w", printErr)
		}
	}
	if err != nil {
		slog.Error("デモの実行に失敗しました", "error", err)
		return fmt.Errorf("デモの実行に失敗: %w", err)
	}

	appCtx.Logger().Info("デモが完了しました",
		"inserted", report.Inserted,
		"answered", report.Outcome.OK(),
		"reset", report.Reset,
		"remaining", report.Remaining,
	)
	return nil
}
