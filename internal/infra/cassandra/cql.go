package cassandra

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kdoneva/cassandra-as-vector-store/internal/platform/config"
)

// ErrNonFiniteVector はベクトルに NaN / Inf が含まれる場合のエラー
var ErrNonFiniteVector = errors.New("vector contains non-finite component")

// Table はキースペース修飾済みのテーブル名
type Table struct {
	Keyspace string
	Name     string
}

// NewTable は識別子を検証して Table を作成する
func NewTable(keyspace, name string) (Table, error) {
	if err := config.ValidateIdentifier(keyspace); err != nil {
		return Table{}, fmt.Errorf("keyspace: %w", err)
	}
	if err := config.ValidateIdentifier(name); err != nil {
		return Table{}, fmt.Errorf("table: %w", err)
	}
	return Table{Keyspace: keyspace, Name: name}, nil
}

// String は "keyspace.table" 形式を返す
func (t Table) String() string {
	return t.Keyspace + "." + t.Name
}

func (t Table) indexName() string {
	return t.Name + "_vector_idx"
}

func (t Table) createTableStatement(dimension int) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (row_id text PRIMARY KEY, body_blob text, vector vector<float, %d>, metadata_s map<text, text>)",
		t, dimension,
	)
}

func (t Table) createIndexStatement() string {
	return fmt.Sprintf(
		"CREATE CUSTOM INDEX IF NOT EXISTS %s ON %s (vector) USING 'StorageAttachedIndex' WITH OPTIONS = {'similarity_function': 'cosine'}",
		t.indexName(), t,
	)
}

func (t Table) insertStatement(vectorLiteral string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (row_id, body_blob, vector, metadata_s) VALUES (?, ?, %s, ?)",
		t, vectorLiteral,
	)
}

func (t Table) searchStatement(vectorLiteral string) string {
	return fmt.Sprintf(
		"SELECT row_id, body_blob, metadata_s, similarity_cosine(vector, %s) FROM %s ORDER BY vector ANN OF %s LIMIT ?",
		vectorLiteral, t, vectorLiteral,
	)
}

func (t Table) countStatement() string {
	return "SELECT COUNT(*) FROM " + t.String()
}

func (t Table) truncateStatement() string {
	return "TRUNCATE " + t.String()
}

// VectorLiteral はベクトルを CQL の vector リテラル（[0.1, 0.2]）に変換する
func VectorLiteral(vector []float32) (string, error) {
	if len(vector) == 0 {
		return "", fmt.Errorf("empty vector")
	}

	var b strings.Builder
	b.Grow(len(vector) * 12)
	b.WriteByte('[')
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w at index %d", ErrNonFiniteVector, i)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatFloat(v))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// formatFloat は float32 を最短表現で書き出す。整数値には ".0" を付ける
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
