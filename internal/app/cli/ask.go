package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"
)

// AskAction は既存のテーブルを検索して LLM に回答させる（取り込み・リセットは行わない）
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	k := cmd.Int("k")

	question := strings.Join(cmd.Args().Slice(), " ")
	if question == "" {
		question = cmd.String("question")
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	report, err := appCtx.Container.Runner.Ask(ctx, question, k)
	if err != nil {
		slog.Error("質問応答に失敗しました", "error", err)
		return fmt.Errorf("質問応答に失敗: %w", err)
	}

	if err := report.Print(output(cmd)); err != nil {
		return fmt.Errorf("結果の出力に失敗: %w", err)
	}

	appCtx.Logger().Info("質問応答が完了しました", "results", len(report.Results), "answered", report.Outcome.OK())
	return nil
}
