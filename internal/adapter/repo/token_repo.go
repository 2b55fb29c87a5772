package repo

import (
	"sync"
	"time"
)

// RevocationList remembers logged-out token ids until they would have expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke blocks tokenID until expiresAt.
func (l *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	if tokenID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[tokenID] = expiresAt
	l.sweepLocked()
}

// Revoked reports whether tokenID was logged out.
func (l *RevocationList) Revoked(tokenID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.revoked[tokenID]
	return ok && l.now().Before(exp)
}

func (l *RevocationList) sweepLocked() {
	now := l.now()
	for id, exp := range l.revoked {
		if !now.Before(exp) {
			delete(l.revoked, id)
		}
	}
}
