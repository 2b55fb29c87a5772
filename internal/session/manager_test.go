package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"askida/internal/apiclient"
	"askida/internal/domain"
)

type stubAuth struct {
	user      *domain.User
	meErr     error
	logoutErr error
	meCalls   int
	logouts   int
	seenToken string
	tokens    apiclient.TokenSource
}

func (s *stubAuth) Me(ctx context.Context) (*domain.User, error) {
	s.meCalls++
	if s.tokens != nil {
		s.seenToken, _ = s.tokens.Token(ctx)
	}
	if s.meErr != nil {
		return nil, s.meErr
	}
	return s.user, nil
}

func (s *stubAuth) Logout(ctx context.Context) error {
	s.logouts++
	return s.logoutErr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func seededManager(t *testing.T, token string) (*Manager, *Store) {
	t.Helper()
	store := NewStore(NewMemoryKV())
	if token != "" {
		err := store.Save(context.Background(), domain.Session{
			Token: token,
			User:  domain.User{ID: 7, FullName: "Stale Name", Role: domain.RoleShelterVolunteer},
		})
		if err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	return NewManager(store, nil), store
}

func TestRestoreWithoutToken(t *testing.T) {
	mgr, _ := seededManager(t, "")
	auth := &stubAuth{}
	sess, err := mgr.Restore(context.Background(), auth)
	if err != nil || sess != nil {
		t.Fatalf("Restore = %+v, %v", sess, err)
	}
	if auth.meCalls != 0 {
		t.Fatalf("Me should not be called without a token")
	}
}

func TestRestoreValidToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	mgr, store := seededManager(t, token)
	auth := &stubAuth{user: &domain.User{ID: 7, FullName: "Fresh Name", Role: domain.RoleShelterVolunteer}, tokens: mgr}

	sess, err := mgr.Restore(context.Background(), auth)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if sess == nil || sess.User.FullName != "Fresh Name" {
		t.Fatalf("Restore = %+v", sess)
	}
	if auth.seenToken != token {
		t.Fatalf("Me was called without the stored token")
	}
	stored, _ := store.Load(context.Background())
	if stored.User.FullName != "Fresh Name" {
		t.Fatalf("stored user not refreshed: %+v", stored.User)
	}
	if caps := mgr.Capabilities(); !caps.CanReserve || caps.Sees(domain.CategoryCleanFood) {
		t.Fatalf("volunteer capabilities = %+v", caps)
	}
}

func TestRestoreRejectedTokenClearsSession(t *testing.T) {
	mgr, store := seededManager(t, "opaque-token")
	auth := &stubAuth{meErr: &apiclient.APIError{Status: 401, Message: "Geçersiz token"}}
	auth.meErr = errors.Join(domain.ErrUnauthorized, auth.meErr)

	sess, err := mgr.Restore(context.Background(), auth)
	if err != nil || sess != nil {
		t.Fatalf("Restore = %+v, %v", sess, err)
	}
	if _, ok := store.Token(context.Background()); ok {
		t.Fatalf("token should be cleared")
	}
	if _, ok := mgr.Token(context.Background()); ok {
		t.Fatalf("manager should be signed out")
	}
}

func TestRestoreExpiredTokenSkipsServer(t *testing.T) {
	mgr, store := seededManager(t, signedToken(t, time.Now().Add(-time.Minute)))
	auth := &stubAuth{}

	sess, err := mgr.Restore(context.Background(), auth)
	if err != nil || sess != nil {
		t.Fatalf("Restore = %+v, %v", sess, err)
	}
	if auth.meCalls != 0 {
		t.Fatalf("expired token should not reach the server")
	}
	if _, ok := store.Token(context.Background()); ok {
		t.Fatalf("expired token should be cleared")
	}
}

func TestRestoreNetworkFailureKeepsSession(t *testing.T) {
	mgr, store := seededManager(t, "opaque-token")
	auth := &stubAuth{meErr: domain.ErrNetwork}

	sess, err := mgr.Restore(context.Background(), auth)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("Restore error = %v, want ErrNetwork", err)
	}
	if sess == nil || sess.Token != "opaque-token" {
		t.Fatalf("session should be kept, got %+v", sess)
	}
	if _, ok := store.Token(context.Background()); !ok {
		t.Fatalf("persisted token should survive a network failure")
	}
}

func TestSignInAndSignOut(t *testing.T) {
	mgr, store := seededManager(t, "")
	ctx := context.Background()

	sess, err := mgr.SignIn(ctx, &apiclient.AuthResult{Token: "tok", User: domain.User{ID: 1, Role: domain.RoleDonor}}, true)
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if !sess.RememberMe || !store.RememberMe(ctx) {
		t.Fatalf("remember me not persisted")
	}
	if token, ok := mgr.Token(ctx); !ok || token != "tok" {
		t.Fatalf("Token = %q, %v", token, ok)
	}

	auth := &stubAuth{logoutErr: domain.ErrNetwork}
	if err := mgr.SignOut(ctx, auth); err != nil {
		t.Fatalf("SignOut error: %v", err)
	}
	if auth.logouts != 1 {
		t.Fatalf("logout calls = %d, want 1", auth.logouts)
	}
	if mgr.Current() != nil {
		t.Fatalf("session should be cleared even when server logout fails")
	}
	if _, ok := store.Token(ctx); ok {
		t.Fatalf("token should be cleared")
	}
	if caps := mgr.Capabilities(); caps.CanPost || caps.CanReserve {
		t.Fatalf("signed-out capabilities = %+v", caps)
	}
}

func TestSignInRejectsEmptyResult(t *testing.T) {
	mgr, _ := seededManager(t, "")
	if _, err := mgr.SignIn(context.Background(), &apiclient.AuthResult{}, false); err == nil {
		t.Fatal("expected error for empty token")
	}
}
