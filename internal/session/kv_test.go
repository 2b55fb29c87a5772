package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get on empty store error = %v, want ErrKeyNotFound", err)
	}
	if err := kv.Set(ctx, KeyToken, "first"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := kv.Set(ctx, KeyToken, "second"); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	got, err := kv.Get(ctx, KeyToken)
	if err != nil || got != "second" {
		t.Fatalf("Get = %q, %v; want second", got, err)
	}
	if err := kv.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := kv.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("Delete of missing key error: %v", err)
	}
	if _, err := kv.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get after delete error = %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "askida")
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV error: %v", err)
	}
	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), KeyUser, `{"id":1}`); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, KeyUser))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Fatalf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileKVRejectsTraversal(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV error: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", `a\b`, ".hidden", ".."} {
		if err := kv.Set(context.Background(), key, "x"); err == nil {
			t.Fatalf("Set(%q) expected error", key)
		}
	}
}

func TestNewFileKVRequiresPath(t *testing.T) {
	if _, err := NewFileKV("  "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	kv, err := OpenSQLiteKV(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLiteKV error: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), KeyRememberMe, "true"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	kv.Close()

	reopened, err := OpenSQLiteKV(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()
	if got, err := reopened.Get(context.Background(), KeyRememberMe); err != nil || got != "true" {
		t.Fatalf("value after reopen = %q, %v", got, err)
	}
}
