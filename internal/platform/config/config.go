package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidIdentifier はキースペース名・テーブル名が CQL 識別子として不正な場合のエラー
var ErrInvalidIdentifier = errors.New("invalid identifier")

// identifierPattern は引用符なしで使える CQL 識別子（最大48文字）
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)

// バックエンド種別
const (
	BackendCassandra = "cassandra"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Embedding プロバイダ種別
const (
	EmbeddingProviderTEI    = "tei"
	EmbeddingProviderOpenAI = "openai"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// ベクトルストアのバックエンド（cassandra / postgres / memory）
	Backend string

	// Cassandra設定
	Cassandra CassandraConfig

	// PostgreSQL設定（pgvector バックエンド用）
	Database DatabaseConfig

	// Embedding設定
	Embedding EmbeddingConfig

	// 回答生成用LLM設定
	LLM LLMConfig

	// ログ設定
	Log LogConfig
}

// CassandraConfig は Cassandra 接続設定
type CassandraConfig struct {
	Hosts             []string
	Port              int
	Keyspace          string
	Table             string
	ReplicationFactor int
	Consistency       string
	Username          string
	Password          string
	Timeout           time.Duration
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Schema   string // pgvector バックエンドのスキーマ名
	Table    string
}

// EmbeddingConfig は Embedding 生成の設定
type EmbeddingConfig struct {
	Provider  string // "tei" or "openai"
	BaseURL   string
	Model     string
	Dimension int
	APIKey    string
}

// LLMConfig は回答生成用 LLM の設定（OpenAI互換API）
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string
	Format string
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Backend: strings.ToLower(getEnv("VECTOR_STORE_BACKEND", BackendCassandra)),
		Cassandra: CassandraConfig{
			Hosts:             getEnvAsList("CASSANDRA_HOST", []string{"172.21.0.2"}),
			Port:              getEnvAsInt("CASSANDRA_PORT", 9042),
			Keyspace:          getEnv("CASSANDRA_KEYSPACE", "ks_vector"),
			Table:             getEnv("CASSANDRA_TABLE", "document_embeddings"),
			ReplicationFactor: getEnvAsInt("CASSANDRA_REPLICATION_FACTOR", 1),
			Consistency:       strings.ToUpper(getEnv("CASSANDRA_CONSISTENCY", "ONE")),
			Username:          getEnv("CASSANDRA_USERNAME", ""),
			Password:          getEnv("CASSANDRA_PASSWORD", ""),
			Timeout:           getEnvAsDuration("CASSANDRA_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "vector"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "vector"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Schema:   getEnv("DB_SCHEMA", "ks_vector"),
			Table:    getEnv("DB_TABLE", "document_embeddings"),
		},
		Embedding: loadEmbeddingConfig(),
		LLM: LLMConfig{
			APIKey:      getEnv("TOGETHER_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.together.xyz/v1"),
			Model:       getEnv("LLM_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 256),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEmbeddingConfig はプロバイダに応じたデフォルト値で Embedding 設定を読み込みます
func loadEmbeddingConfig() EmbeddingConfig {
	provider := strings.ToLower(getEnv("EMBEDDING_PROVIDER", EmbeddingProviderTEI))

	// TEI は all-MiniLM-L6-v2（384次元）をローカルで提供する想定
	baseURL, model, dimension := "http://localhost:8080", "sentence-transformers/all-MiniLM-L6-v2", 384
	if provider == EmbeddingProviderOpenAI {
		baseURL, model, dimension = "", "text-embedding-3-small", 1536
	}

	return EmbeddingConfig{
		Provider:  provider,
		BaseURL:   getEnv("EMBEDDING_BASE_URL", baseURL),
		Model:     getEnv("EMBEDDING_MODEL", model),
		Dimension: getEnvAsInt("EMBEDDING_DIMENSION", dimension),
		APIKey:    getEnv("EMBEDDING_API_KEY", os.Getenv("OPENAI_API_KEY")),
	}
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCassandra, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unsupported VECTOR_STORE_BACKEND: %q", c.Backend)
	}

	switch c.Embedding.Provider {
	case EmbeddingProviderTEI, EmbeddingProviderOpenAI:
	default:
		return fmt.Errorf("unsupported EMBEDDING_PROVIDER: %q", c.Embedding.Provider)
	}

	if err := ValidateIdentifier(c.Cassandra.Keyspace); err != nil {
		return fmt.Errorf("CASSANDRA_KEYSPACE: %w", err)
	}
	if err := ValidateIdentifier(c.Cassandra.Table); err != nil {
		return fmt.Errorf("CASSANDRA_TABLE: %w", err)
	}
	if err := ValidateIdentifier(c.Database.Schema); err != nil {
		return fmt.Errorf("DB_SCHEMA: %w", err)
	}
	if err := ValidateIdentifier(c.Database.Table); err != nil {
		return fmt.Errorf("DB_TABLE: %w", err)
	}
	if len(c.Cassandra.Hosts) == 0 {
		return fmt.Errorf("CASSANDRA_HOST must not be empty")
	}
	if c.Cassandra.ReplicationFactor < 1 {
		return fmt.Errorf("CASSANDRA_REPLICATION_FACTOR must be >= 1, got %d", c.Cassandra.ReplicationFactor)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension)
	}

	return nil
}

// ValidateIdentifier は CQL/SQL に埋め込む識別子を検証します
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します（"30s" 形式）
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList はカンマ区切りの環境変数をスライスとして取得します
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
