package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"askida/internal/apiclient"
	"askida/internal/domain"
	"askida/internal/infra"
)

// Manager owns the process-wide session: restored at start, set on sign-in and cleared on
// sign-out or when the server rejects the token.
type Manager struct {
	mu      sync.RWMutex
	store   *Store
	current *domain.Session
	logger  *infra.Logger
	now     func() time.Time
}

// NewManager builds a manager over store.
func NewManager(store *Store, logger *infra.Logger) *Manager {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// Restore loads the persisted session and validates it with GET /auth/me. An expired or rejected
// token clears the store and leaves the manager signed out. A network failure keeps the persisted
// session in place and returns the error so the caller can retry.
func (m *Manager) Restore(ctx context.Context, auth domain.AuthAPI) (*domain.Session, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if sess == nil {
		m.set(nil)
		return nil, nil
	}
	if m.expired(sess.Token) {
		m.logger.Info().Msg("session: stored token expired, clearing")
		return nil, m.reset(ctx)
	}

	m.set(sess)
	user, err := auth.Me(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		m.logger.Warn().Err(err).Msg("session: stored token rejected, clearing")
		return nil, m.reset(ctx)
	default:
		m.logger.Warn().Err(err).Msg("session: could not validate stored token")
		return m.Current(), fmt.Errorf("session: validate token: %w", err)
	}

	sess.User = *user
	if err := m.store.Save(ctx, *sess); err != nil {
		m.logger.Warn().Err(err).Msg("session: refresh stored user failed")
	}
	m.set(sess)
	return m.Current(), nil
}

// SignIn persists a fresh login or registration result.
func (m *Manager) SignIn(ctx context.Context, res *apiclient.AuthResult, rememberMe bool) (*domain.Session, error) {
	if res == nil || res.Token == "" {
		return nil, errors.New("session: empty auth result")
	}
	sess := &domain.Session{Token: res.Token, User: res.User, RememberMe: rememberMe}
	if err := m.store.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	m.set(sess)
	return m.Current(), nil
}

// SignOut calls POST /auth/logout on a best-effort basis, then clears the local session. The local
// clear always happens.
func (m *Manager) SignOut(ctx context.Context, auth domain.AuthAPI) error {
	if auth != nil && m.Current() != nil {
		if err := auth.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("session: server logout failed")
		}
	}
	return m.reset(ctx)
}

// Current returns a copy of the active session, or nil when signed out.
func (m *Manager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Token == "" {
		return "", false
	}
	return m.current.Token, true
}

// Capabilities returns the capability set of the signed-in role; none when signed out.
func (m *Manager) Capabilities() domain.Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domain.Capabilities{}
	}
	return domain.CapabilitiesFor(m.current.User.Role)
}

func (m *Manager) set(sess *domain.Session) {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
}

func (m *Manager) reset(ctx context.Context) error {
	m.set(nil)
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// expired reads exp without verifying the signature; the server stays the authority. Tokens that
// are not JWTs are left to the server check.
func (m *Manager) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(m.now())
}

var _ apiclient.TokenSource = (*Manager)(nil)
