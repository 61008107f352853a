package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/container"
)

// SearchAction は類似検索の結果だけを表示する
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	k := cmd.Int("k")

	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("検索クエリを指定してください")
	}

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutLLM())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.Store.Init(ctx); err != nil {
		return fmt.Errorf("ベクトルストアの初期化に失敗: %w", err)
	}

	docs, err := appCtx.Container.Store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return fmt.Errorf("検索に失敗: %w", err)
	}

	w := output(cmd)
	if len(docs) == 0 {
		fmt.Fprintln(w, "該当するドキュメントはありません")
		return nil
	}
	for i, doc := range docs {
		fmt.Fprintf(w, "[%d] スコア: %.4f\n", i+1, doc.Score)
		if source := doc.Metadata["source"]; source != "" {
			fmt.Fprintf(w, "    ソース: %s\n", source)
		}
		fmt.Fprintf(w, "    %s\n", doc.Content)
	}
	return nil
}
