package auth

import (
	"context"
	"sync"
	"time"
)

// RefreshTokenStorage keeps the single active refresh-token identifier per user.
type RefreshTokenStorage interface {
	// Insert replaces any previous identifier for the user.
	Insert(ctx context.Context, userID, tokenID string) error
	Validate(ctx context.Context, userID, tokenID string) (bool, error)
	Invalidate(ctx context.Context, userID string) error
	// Consume deletes the entry only if it still holds tokenID. Of two
	// concurrent calls with the same identifier at most one returns true.
	Consume(ctx context.Context, userID, tokenID string) (bool, error)
}

type memoryEntry struct {
	tokenID   string
	expiresAt time.Time
}

// MemoryRefreshTokenStorage is a process-local store for tests and single-node setups.
type MemoryRefreshTokenStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryRefreshTokenStorage(ttl time.Duration) *MemoryRefreshTokenStorage {
	return &MemoryRefreshTokenStorage{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryRefreshTokenStorage) Insert(_ context.Context, userID, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = memoryEntry{tokenID: tokenID, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryRefreshTokenStorage) Validate(_ context.Context, userID, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(userID)
	return ok && entry.tokenID == tokenID, nil
}

func (m *MemoryRefreshTokenStorage) Invalidate(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}

func (m *MemoryRefreshTokenStorage) Consume(_ context.Context, userID, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(userID)
	if !ok || entry.tokenID != tokenID {
		return false, nil
	}
	delete(m.entries, userID)
	return true, nil
}

// live must be called with mu held.
func (m *MemoryRefreshTokenStorage) live(userID string) (memoryEntry, bool) {
	entry, ok := m.entries[userID]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, userID)
		return memoryEntry{}, false
	}
	return entry, true
}
