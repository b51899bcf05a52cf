package user

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 12

// ErrNoPassword is returned when verifying an owner without a password
var ErrNoPassword = errors.New("no password set")

// SetBcryptCost overrides the hashing cost used for new passwords
func (m *Manager) SetBcryptCost(cost int) {
	m.bcryptCost = cost
}

// SetOwnerPassword hashes password and stores it for owner nick
func (m *Manager) SetOwnerPassword(nick, password string) error {
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := m.db.SetOwnerPassword(nick, string(hash)); err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}

	m.Forget(nick)
	return nil
}

// HasPassword reports whether owner nick has a password
func (m *Manager) HasPassword(nick string) (bool, error) {
	owner, err := m.db.GetOwner(nick)
	if err != nil {
		return false, err
	}
	return owner != nil && owner.PasswordHash != "", nil
}

// Verify checks password for owner nick and, on success, marks nick verified
// for the rest of the session
func (m *Manager) Verify(nick, password string) (bool, error) {
	owner, err := m.db.GetOwner(nick)
	if err != nil {
		return false, err
	}
	if owner == nil {
		return false, nil
	}
	if owner.PasswordHash == "" {
		return false, ErrNoPassword
	}

	err = bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	m.mu.Lock()
	m.verified[strings.ToLower(nick)] = true
	m.mu.Unlock()
	return true, nil
}
