package session

import (
	"context"
	"testing"

	"askida/internal/domain"
)

func TestStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	sess, err := store.Load(ctx)
	if err != nil || sess != nil {
		t.Fatalf("Load on empty store = %+v, %v", sess, err)
	}

	want := domain.Session{
		Token:      "tok",
		User:       domain.User{ID: 3, FullName: "Ayşe", Email: "ayse@example.com", Role: domain.RoleRecipient},
		RememberMe: true,
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got == nil || got.Token != want.Token || got.User != want.User || !got.RememberMe {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if token, ok := store.Token(ctx); !ok || token != "tok" {
		t.Fatalf("Token = %q, %v", token, ok)
	}

	want.RememberMe = false
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if store.RememberMe(ctx) {
		t.Fatalf("remember_me should be removed")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok := store.Token(ctx); ok {
		t.Fatalf("token should be gone after Clear")
	}
	if sess, _ := store.Load(ctx); sess != nil {
		t.Fatalf("Load after Clear = %+v", sess)
	}
}

func TestStoreSaveRequiresToken(t *testing.T) {
	if err := NewStore(NewMemoryKV()).Save(context.Background(), domain.Session{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestStoreLoadToleratesCorruptUser(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, KeyToken, "tok")
	_ = kv.Set(ctx, KeyUser, "{not json")

	sess, err := NewStore(kv).Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess == nil || sess.Token != "tok" || sess.User.ID != 0 {
		t.Fatalf("Load = %+v", sess)
	}
}
