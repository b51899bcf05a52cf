package user

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yourusername/ircbot/internal/database"
)

// OwnerSet is the in-memory owner list consulted by the IRC client
type OwnerSet interface {
	AddOwner(nick string)
	RemoveOwner(nick string) bool
}

// Manager keeps the persistent owner list in sync with the client and tracks
// which owners proved their identity with a password this session
type Manager struct {
	db         *database.DB
	owners     OwnerSet
	bcryptCost int

	mu       sync.Mutex
	verified map[string]bool
}

// NewManager creates a new user manager
func NewManager(db *database.DB, owners OwnerSet) *Manager {
	return &Manager{
		db:         db,
		owners:     owners,
		bcryptCost: BcryptCost,
		verified:   make(map[string]bool),
	}
}

// Sync stores the configured owners and loads every stored owner into the
// client
func (m *Manager) Sync(configured []string) error {
	for _, nick := range configured {
		if nick == "" {
			continue
		}
		if _, err := m.db.AddOwner(nick); err != nil {
			return fmt.Errorf("failed to store configured owner %s: %w", nick, err)
		}
	}

	owners, err := m.db.ListOwners()
	if err != nil {
		return fmt.Errorf("failed to load owners: %w", err)
	}
	for _, o := range owners {
		m.owners.AddOwner(o.Nick)
	}
	return nil
}

// AddOwner makes nick an owner and reports whether it was new
func (m *Manager) AddOwner(nick string) (bool, error) {
	added, err := m.db.AddOwner(nick)
	if err != nil {
		return false, err
	}
	m.owners.AddOwner(nick)
	return added, nil
}

// RemoveOwner revokes nick and reports whether it was an owner
func (m *Manager) RemoveOwner(nick string) (bool, error) {
	removed, err := m.db.RemoveOwner(nick)
	if err != nil {
		return false, err
	}

	// The stored nick may differ in case from the one the client knows
	m.owners.RemoveOwner(nick)
	m.Forget(nick)
	return removed, nil
}

// ListOwners returns the stored owner nicks
func (m *Manager) ListOwners() ([]string, error) {
	owners, err := m.db.ListOwners()
	if err != nil {
		return nil, err
	}
	nicks := make([]string, len(owners))
	for i, o := range owners {
		nicks[i] = o.Nick
	}
	return nicks, nil
}

// IsVerified reports whether nick verified with its password this session
func (m *Manager) IsVerified(nick string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verified[strings.ToLower(nick)]
}

// Forget drops the verification of nick
func (m *Manager) Forget(nick string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.verified, strings.ToLower(nick))
}

// Rename carries a verification across a nick change
func (m *Manager) Rename(oldNick, newNick string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(oldNick)
	if m.verified[key] {
		delete(m.verified, key)
		m.verified[strings.ToLower(newNick)] = true
	}
}

// Reset forgets every verification. Called when the session ends.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = make(map[string]bool)
}

// Authorized reports whether nick may run owner commands: it must be an
// owner, and if the owner has a password it must have verified
func (m *Manager) Authorized(nick string) (bool, error) {
	owner, err := m.db.GetOwner(nick)
	if err != nil {
		return false, err
	}
	if owner == nil {
		return false, nil
	}
	if owner.PasswordHash == "" {
		return true, nil
	}
	return m.IsVerified(nick), nil
}
