package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/config"
)

// ErrInvalidReplicationFactor はレプリケーション係数が1未満の場合のエラー
var ErrInvalidReplicationFactor = errors.New("replication factor must be >= 1")

// ConnectionParams は Cassandra 接続パラメータ
type ConnectionParams struct {
	Hosts       []string
	Port        int
	Consistency string
	Username    string
	Password    string
	Timeout     time.Duration
}

// Session は gocql セッションを保持します
type Session struct {
	Session *gocql.Session
}

// NewCluster は接続パラメータから gocql のクラスタ設定を組み立てます
func NewCluster(params ConnectionParams) (*gocql.ClusterConfig, error) {
	if len(params.Hosts) == 0 {
		return nil, fmt.Errorf("no cassandra hosts configured")
	}

	cluster := gocql.NewCluster(params.Hosts...)
	if params.Port > 0 {
		cluster.Port = params.Port
	}
	if params.Timeout > 0 {
		cluster.Timeout = params.Timeout
		cluster.ConnectTimeout = params.Timeout
	}

	if params.Consistency != "" {
		consistency, err := gocql.ParseConsistencyWrapper(params.Consistency)
		if err != nil {
			return nil, fmt.Errorf("invalid consistency %q: %w", params.Consistency, err)
		}
		cluster.Consistency = consistency
	}

	if params.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: params.Username,
			Password: params.Password,
		}
	}

	return cluster, nil
}

// Connect は新しい Cassandra セッションを作成します
func Connect(ctx context.Context, params ConnectionParams) (*Session, error) {
	cluster, err := NewCluster(params)
	if err != nil {
		return nil, err
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}

	// 接続テスト
	if err := session.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to ping cassandra: %w", err)
	}

	return &Session{Session: session}, nil
}

// CreateKeyspaceStatement はキースペース作成 CQL を返します
func CreateKeyspaceStatement(keyspace string, replicationFactor int) (string, error) {
	if err := config.ValidateIdentifier(keyspace); err != nil {
		return "", err
	}
	if replicationFactor < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidReplicationFactor, replicationFactor)
	}

	return fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		keyspace, replicationFactor,
	), nil
}

// EnsureKeyspace はキースペースが存在しなければ作成します（冪等）
func (s *Session) EnsureKeyspace(ctx context.Context, keyspace string, replicationFactor int) error {
	stmt, err := CreateKeyspaceStatement(keyspace, replicationFactor)
	if err != nil {
		return err
	}

	if err := s.Session.Query(stmt).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace %s: %w", keyspace, err)
	}
	return nil
}

// Provision は接続してキースペースを用意し、そのセッションを返します
func Provision(ctx context.Context, params ConnectionParams, keyspace string, replicationFactor int) (*Session, error) {
	session, err := Connect(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := session.EnsureKeyspace(ctx, keyspace, replicationFactor); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

// Close はセッションを閉じます
func (s *Session) Close() {
	if s != nil && s.Session != nil {
		s.Session.Close()
	}
}
