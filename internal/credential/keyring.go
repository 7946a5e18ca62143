package credential

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/99designs/keyring"
)

const (
	serviceName = "campus-inbox"
	tokenKey    = "auth-token"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	// Token returns the stored token, or "" when none is stored.
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// KeyringStore keeps the token in the OS keyring, falling back to an
// encrypted file under dir when no system backend is available.
type KeyringStore struct {
	dir string

	mu   sync.Mutex
	ring keyring.Keyring
}

// NewKeyringStore returns a store whose file backend lives in dir.
func NewKeyringStore(dir string) *KeyringStore {
	return &KeyringStore{dir: dir}
}

// open lazily configures the keyring so that constructing a store never
// prompts or touches the disk.
func (s *KeyringStore) open() (keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ring != nil {
		return s.ring, nil
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(s.dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("campus-inbox-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	s.ring = ring
	return ring, nil
}

// Token retrieves the bearer token from the keyring.
func (s *KeyringStore) Token() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return string(item.Data), nil
}

// SetToken stores the bearer token in the keyring.
func (s *KeyringStore) SetToken(token string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: "Campus inbox session",
	})
	if err != nil {
		return fmt.Errorf("setting token: %w", err)
	}

	return nil
}

// ClearToken removes the bearer token. Removing an absent token is not an
// error.
func (s *KeyringStore) ClearToken() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting token: %w", err)
	}

	return nil
}

// MemoryStore is an in-process TokenStore.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store holding token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) ClearToken() error {
	return m.SetToken("")
}
