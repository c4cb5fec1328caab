// Package credential remembers the signed-in session in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const (
	serviceName = "bizdesk"
	sessionKey  = "session.user_id"
)

// Session persists the id of the signed-in user between runs.
type Session struct {
	ring keyring.Keyring
}

// NewSession wraps an already opened keyring.
func NewSession(ring keyring.Keyring) *Session {
	return &Session{ring: ring}
}

// OpenSession opens the platform keyring, falling back to an encrypted
// file store under fileDir.
func OpenSession(fileDir string) (*Session, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("bizdesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewSession(ring), nil
}

// Load returns the remembered user id, or "" when nothing is stored.
func (s *Session) Load() (string, error) {
	item, err := s.ring.Get(sessionKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading session: %w", err)
	}
	return string(item.Data), nil
}

// Save remembers userID.
func (s *Session) Save(userID string) error {
	err := s.ring.Set(keyring.Item{
		Key:         sessionKey,
		Data:        []byte(userID),
		Label:       "bizdesk session",
		Description: "Signed-in bizdesk user",
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear forgets the remembered user. Clearing an empty session is not an error.
func (s *Session) Clear() error {
	err := s.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
