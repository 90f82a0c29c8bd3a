package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in process RevocationLedger. Suitable for a single
// instance deployment and for tests; expired entries are dropped lazily
// on lookup.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]time.Time),
	}
}

// Revoke records a token id until its expiry. Revoking the same id
// again is a no op.
func (l *MemoryLedger) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrNoEmptyString
	}
	if !expiresAt.After(time.Now()) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[tokenID]; !ok {
		l.entries[tokenID] = expiresAt
	}
	return nil
}

func (l *MemoryLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, ErrNoEmptyString
	}
	l.mu.RLock()
	expiresAt, ok := l.entries[tokenID]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if expiresAt.Before(time.Now()) {
		l.mu.Lock()
		delete(l.entries, tokenID)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
