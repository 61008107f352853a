package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/kdoneva/cassandra-as-vector-store/internal/app/cli"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/demo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
}

func kFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:  "k",
		Usage: "取得する類似ドキュメント数",
		Value: value,
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           "cassandra-rag",
		Usage:          "Cassandra をベクトルストアとして使う RAG デモ",
		DefaultCommand: "run",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "サンプル文を取り込み、質問に回答して、テーブルをリセット",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "question",
						Usage: "質問文（例: \"" + demo.AlternateQuestion + "\"）",
						Value: demo.DefaultQuestion,
					},
					kFlag(demo.DefaultK),
					&cli.BoolFlag{
						Name:  "keep",
						Usage: "終了時にテーブルを TRUNCATE しない",
					},
				},
				Action: appcli.RunAction,
			},
			{
				Name:   "provision",
				Usage:  "キースペースを作成（既に存在する場合は何もしない）",
				Flags:  []cli.Flag{envFlag()},
				Action: appcli.ProvisionAction,
			},
			{
				Name:      "ingest",
				Usage:     "テキストを埋め込んでテーブルに書き込む",
				ArgsUsage: "[テキスト...]",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "取り込むテキストファイル（チャンク分割して書き込む、複数指定可）",
					},
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "サンプル文4件を取り込む",
					},
				},
				Action: appcli.IngestAction,
			},
			{
				Name:      "search",
				Usage:     "類似検索の結果を表示",
				ArgsUsage: "<クエリ>",
				Flags:     []cli.Flag{envFlag(), kFlag(demo.DefaultK)},
				Action:    appcli.SearchAction,
			},
			{
				Name:      "ask",
				Usage:     "既存のテーブルを検索して LLM に回答させる",
				ArgsUsage: "[質問文]",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "question",
						Usage: "質問文（引数が無い場合に使用）",
						Value: demo.DefaultQuestion,
					},
					kFlag(demo.DefaultK),
				},
				Action: appcli.AskAction,
			},
			{
				Name:   "count",
				Usage:  "テーブルの行数を表示",
				Flags:  []cli.Flag{envFlag()},
				Action: appcli.CountAction,
			},
			{
				Name:   "truncate",
				Usage:  "テーブルを空にする",
				Flags:  []cli.Flag{envFlag()},
				Action: appcli.TruncateAction,
			},
		},
	}
}
