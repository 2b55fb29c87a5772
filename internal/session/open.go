package session

import (
	"context"
	"fmt"
	"path/filepath"

	"askida/internal/infra"
)

// Open builds the KV backend selected by cfg.SessionStore. The returned close function releases
// any database handle and is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (KV, func(), error) {
	noop := func() {}
	switch cfg.SessionStore {
	case "", "file":
		kv, err := NewFileKV(cfg.SessionPath)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case "sqlite":
		kv, err := OpenSQLiteKV(ctx, filepath.Join(cfg.SessionPath, "session.db"))
		if err != nil {
			return nil, noop, err
		}
		return kv, func() { _ = kv.Close() }, nil
	case "postgres":
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		kv := NewPostgresKV(infra.NewSQLRunner(pool, logger), cfg.SessionNamespace)
		if err := kv.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return kv, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("session: unknown store %q", cfg.SessionStore)
	}
}
