package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationChecker records token ids that must no longer be honored.
// Implementations must be safe for concurrent use.
type RevocationChecker interface {
	// Revoke marks jti as revoked. expiresAt is the token's own expiry and
	// lets implementations forget the entry once the token is dead anyway.
	// Revoking the same jti twice is harmless.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationList is a process-local RevocationChecker.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{entries: make(map[string]time.Time)}
}

func (l *MemoryRevocationList) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.entries[jti]; ok && current.After(expiresAt) {
		return nil
	}
	l.entries[jti] = expiresAt
	return nil
}

func (l *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[jti]
	return ok, nil
}

// Len returns the number of revoked ids currently held.
func (l *MemoryRevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Sweep drops entries whose token expired at or before now and returns how
// many were removed.
func (l *MemoryRevocationList) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for jti, expiresAt := range l.entries {
		if !expiresAt.After(now) {
			delete(l.entries, jti)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, when
// set, receives the number of entries removed by each pass.
func (l *MemoryRevocationList) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := l.Sweep(now)
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
