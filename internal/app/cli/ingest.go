package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/demo"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/container"
)

// IngestAction はテキストを埋め込んでテーブルに書き込む
// 引数のテキスト、--file で指定したファイル（チャンク分割）、--sample のサンプル文を受け付ける
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	files := cmd.StringSlice("file")
	useSample := cmd.Bool("sample")
	texts := cmd.Args().Slice()

	if useSample {
		texts = append(texts, demo.SampleTexts...)
	}
	if len(texts) == 0 && len(files) == 0 {
		return fmt.Errorf("取り込むテキスト、--file または --sample を指定してください")
	}

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutLLM())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	store := appCtx.Container.Store
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("ベクトルストアの初期化に失敗: %w", err)
	}

	docs := make([]*vectorstore.Document, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, &vectorstore.Document{Content: text})
	}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ファイルの読み込みに失敗 (%s): %w", path, err)
		}
		chunks, err := appCtx.Container.Splitter.SplitDocuments(filepath.Base(path), string(content))
		if err != nil {
			return fmt.Errorf("チャンク分割に失敗 (%s): %w", path, err)
		}
		appCtx.Logger().Info("ファイルを分割しました", "file", path, "chunks", len(chunks))
		docs = append(docs, chunks...)
	}

	ids, err := store.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("取り込みに失敗: %w", err)
	}

	fmt.Fprintf(output(cmd), "%d 件を取り込みました\n", len(ids))
	return nil
}
