package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"askida/internal/infra"
	"askida/internal/sqlinline"
)

// PostgresKV stores entries in a shared PostgreSQL table, partitioned by namespace so several
// profiles (a kiosk's operators, for example) can share one database.
type PostgresKV struct {
	sql       infra.SQLExecutor
	namespace string
}

// NewPostgresKV wraps an executor. The namespace defaults to "default".
func NewPostgresKV(sql infra.SQLExecutor, namespace string) *PostgresKV {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresKV{sql: sql, namespace: namespace}
}

// Migrate creates the session table when missing.
func (s *PostgresKV) Migrate(ctx context.Context) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QCreateSessionTable); err != nil {
		return fmt.Errorf("session: migrate postgres: %w", err)
	}
	return nil
}

func (s *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectSessionValue, s.namespace, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("session: read %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresKV) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("session: key is required")
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertSessionValue, s.namespace, key, value); err != nil {
		return fmt.Errorf("session: write %s: %w", key, err)
	}
	return nil
}

func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QDeleteSessionValue, s.namespace, key); err != nil {
		return fmt.Errorf("session: delete %s: %w", key, err)
	}
	return nil
}
