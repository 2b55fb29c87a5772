package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"askida/internal/domain"
)

const (
	KeyToken      = "auth_token"
	KeyUser       = "auth_user"
	KeyRememberMe = "remember_me"
)

// Store reads and writes the persisted session over a KV backend.
type Store struct {
	mu sync.Mutex
	kv KV
}

// NewStore wraps a backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save persists the token, the JSON-encoded user and the remember-me flag.
func (s *Store) Save(ctx context.Context, sess domain.Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return errors.New("session: token is required")
	}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, KeyToken, sess.Token); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyUser, string(userJSON)); err != nil {
		return err
	}
	if sess.RememberMe {
		return s.kv.Set(ctx, KeyRememberMe, "true")
	}
	return s.kv.Delete(ctx, KeyRememberMe)
}

// Load returns the persisted session, or nil when no token is stored. A token without a
// readable user is still returned so the caller can validate it against the server.
func (s *Store) Load(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.get(ctx, KeyToken)
	if err != nil || token == "" {
		return nil, err
	}
	sess := &domain.Session{Token: token}
	if raw, err := s.get(ctx, KeyUser); err != nil {
		return nil, err
	} else if raw != "" {
		if err := json.Unmarshal([]byte(raw), &sess.User); err != nil {
			sess.User = domain.User{}
		}
	}
	remember, err := s.get(ctx, KeyRememberMe)
	if err != nil {
		return nil, err
	}
	sess.RememberMe = remember == "true"
	return sess, nil
}

// Token returns the persisted bearer token.
func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.get(ctx, KeyToken)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// RememberMe reports the persisted remember-me flag.
func (s *Store) RememberMe(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(ctx, KeyRememberMe)
	return err == nil && v == "true"
}

// Clear removes every session key. All deletes are attempted even if one fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, key := range []string{KeyToken, KeyUser, KeyRememberMe} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}
