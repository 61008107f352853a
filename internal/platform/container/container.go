package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/demo"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/cassandra"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/memory"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/openai"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/postgres"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/tei"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/textsplit"
	"github.com/kdoneva/cassandra-as-vector-store/internal/infra/tokenizer"
	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/config"
	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/database"
)

// ServiceContainer は設定に応じて組み立てた依存関係を保持する。
type ServiceContainer struct {
	Store       *vectorstore.Store
	Synthesizer *answer.Synthesizer // WithoutLLM 指定時は nil
	Runner      *demo.Runner        // WithoutLLM 指定時は nil
	Resetter    demo.Resetter
	Splitter    *textsplit.Splitter
	Embedder    vectorstore.Embedder

	logger   *slog.Logger
	session  *database.Session
	database *database.Database
}

type containerOptions struct {
	logger       *slog.Logger
	embedder     vectorstore.Embedder
	repository   vectorstore.Repository
	resetter     demo.Resetter
	chatClient   answer.ChatClient
	tokenCounter answer.TokenCounter
	withoutLLM   bool
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder vectorstore.Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerRepository はベクトルテーブルを差し替える（バックエンド設定より優先）
func WithContainerRepository(repo vectorstore.Repository, resetter demo.Resetter) ContainerOption {
	return func(opts *containerOptions) {
		opts.repository = repo
		opts.resetter = resetter
	}
}

// WithContainerChatClient は LLM クライアントを差し替える
func WithContainerChatClient(client answer.ChatClient) ContainerOption {
	return func(opts *containerOptions) {
		opts.chatClient = client
	}
}

// WithContainerTokenCounter は TokenCounter を差し替える
func WithContainerTokenCounter(counter answer.TokenCounter) ContainerOption {
	return func(opts *containerOptions) {
		opts.tokenCounter = counter
	}
}

// WithoutLLM は回答生成を使わないコマンド向けに LLM クライアントを構築しない
func WithoutLLM() ContainerOption {
	return func(opts *containerOptions) {
		opts.withoutLLM = true
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	c := &ServiceContainer{logger: options.logger}

	// Embedder
	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = newEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("Embedder 初期化に失敗しました: %w", err)
		}
	}
	c.Embedder = embedder

	// LLMClient は Cassandra への接続より前に検証する
	chatClient := options.chatClient
	if chatClient == nil && !options.withoutLLM {
		client, err := openai.NewClient(
			cfg.LLM.APIKey,
			openai.WithBaseURL(cfg.LLM.BaseURL),
			openai.WithModel(cfg.LLM.Model),
			openai.WithTimeout(cfg.LLM.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("LLMクライアント初期化に失敗しました: %w", err)
		}
		chatClient = client
	}

	// Repository / Resetter
	repo, resetter := options.repository, options.resetter
	if repo == nil {
		var err error
		repo, resetter, err = c.newRepository(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	c.Store = vectorstore.NewStore(repo, embedder, vectorstore.WithStoreLogger(options.logger))
	if resetter == nil {
		resetter = demo.ResetFunc(c.Store.Clear)
	}
	c.Resetter = resetter
	c.Splitter = textsplit.NewSplitter(textsplit.DefaultChunkSize, textsplit.DefaultChunkOverlap)

	if chatClient == nil {
		return c, nil
	}

	// TokenCounter はログ用途のため、読み込めなくても続行する
	synthOpts := []answer.SynthesizerOption{
		answer.WithSynthesizerLogger(options.logger),
		answer.WithMaxTokens(cfg.LLM.MaxTokens),
		answer.WithTemperature(cfg.LLM.Temperature),
	}
	tokenCounter := options.tokenCounter
	if tokenCounter == nil {
		counter, err := tokenizer.NewCounter(tokenizer.DefaultEncoding)
		if err != nil {
			options.logger.Warn("TokenCounter を読み込めませんでした", "error", err)
		} else {
			tokenCounter = counter
		}
	}
	if tokenCounter != nil {
		synthOpts = append(synthOpts, answer.WithTokenCounter(tokenCounter))
	}

	c.Synthesizer = answer.NewSynthesizer(chatClient, synthOpts...)
	c.Runner = demo.NewRunner(c.Store, c.Synthesizer, c.Resetter, demo.WithRunnerLogger(options.logger))

	return c, nil
}

// newEmbedder は EMBEDDING_PROVIDER に応じた Embedder を生成する
func newEmbedder(cfg *config.Config) (vectorstore.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.EmbeddingProviderTEI:
		return tei.NewEmbedder(tei.Config{
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		}), nil
	case config.EmbeddingProviderOpenAI:
		opts := []openai.EmbedderOption{
			openai.WithEmbeddingModel(cfg.Embedding.Model),
			openai.WithEmbeddingDimension(cfg.Embedding.Dimension),
		}
		if cfg.Embedding.BaseURL != "" {
			opts = append(opts, openai.WithEmbeddingBaseURL(cfg.Embedding.BaseURL))
		}
		return openai.NewEmbedder(cfg.Embedding.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Embedding.Provider)
	}
}

// newRepository は VECTOR_STORE_BACKEND に応じたベクトルテーブルとリセット方法を生成する
func (c *ServiceContainer) newRepository(ctx context.Context, cfg *config.Config) (vectorstore.Repository, demo.Resetter, error) {
	switch cfg.Backend {
	case config.BackendCassandra:
		params := CassandraParams(cfg)
		session, err := database.Provision(ctx, params, cfg.Cassandra.Keyspace, cfg.Cassandra.ReplicationFactor)
		if err != nil {
			return nil, nil, fmt.Errorf("Cassandra 初期化に失敗しました: %w", err)
		}
		c.session = session

		table, err := cassandra.NewTable(cfg.Cassandra.Keyspace, cfg.Cassandra.Table)
		if err != nil {
			return nil, nil, err
		}
		repo := cassandra.NewRepository(session.Session, table, cassandra.WithRepositoryLogger(c.logger))
		return repo, cassandra.NewTruncator(params, table, c.logger), nil

	case config.BackendPostgres:
		db, err := database.New(ctx, database.PostgresParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
		}
		c.database = db

		table, err := postgres.NewTable(cfg.Database.Schema, cfg.Database.Table)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRepository(db.Pool, table), nil, nil

	case config.BackendMemory:
		return memory.NewRepository(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend: %q", cfg.Backend)
	}
}

// CassandraParams は設定から Cassandra 接続パラメータを作る
func CassandraParams(cfg *config.Config) database.ConnectionParams {
	return database.ConnectionParams{
		Hosts:       cfg.Cassandra.Hosts,
		Port:        cfg.Cassandra.Port,
		Consistency: cfg.Cassandra.Consistency,
		Username:    cfg.Cassandra.Username,
		Password:    cfg.Cassandra.Password,
		Timeout:     cfg.Cassandra.Timeout,
	}
}

// Close は内部リソースを解放する。
func (c *ServiceContainer) Close() {
	if c == nil {
		return
	}
	if c.session != nil {
		c.session.Close()
	}
	if c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す。
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
