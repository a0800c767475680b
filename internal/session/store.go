package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"go.uber.org/zap"
)

// Store is the single source of truth for "who is logged in, with what
// credential". It is an injectable value, not a process-wide singleton,
// so tests can substitute an in-memory instance.
//
// Token+scheme are always written as one pair, as are user id+role; no
// cross-operation transactions beyond that are needed.
type Store struct {
	mu   sync.RWMutex
	path string // empty for memory-only stores
	data sessionData
}

// sessionData is the durable representation, one small JSON document
// scoped to the installation.
type sessionData struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenScheme string `json:"token_type,omitempty"`
	UserID      *int   `json:"user_id,omitempty"`
	UserRole    string `json:"user_role,omitempty"`
}

// NewFileStore opens a session store persisted at path, rehydrating any
// previously saved session so Token() answers before any network call.
// A missing or unreadable file yields an empty session, not an error:
// the worst case is that the user has to log in again.
func NewFileStore(path string) *Store {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read session file, starting logged out",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("Corrupt session file, starting logged out",
			zap.String("path", path), zap.Error(err))
		s.data = sessionData{}
	}
	return s
}

// NewMemoryStore creates a store that never touches disk.
func NewMemoryStore() *Store {
	return &Store{}
}

// SaveToken persists the credential; subsequent requests must use it.
func (s *Store) SaveToken(token, scheme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.AccessToken = token
	s.data.TokenScheme = scheme
	return s.persistLocked()
}

// SaveIdentity records the logged-in user's id and role, set together
// once the profile fetch after login succeeds.
func (s *Store) SaveIdentity(userID int, role models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UserID = &userID
	s.data.UserRole = string(role)
	return s.persistLocked()
}

// Token returns the stored bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.AccessToken
}

// Scheme returns the stored token scheme, defaulting to "Bearer".
func (s *Store) Scheme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.TokenScheme == "" {
		return "Bearer"
	}
	return s.data.TokenScheme
}

// UserID returns the stored user id and whether identity is known.
func (s *Store) UserID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.UserID == nil {
		return 0, false
	}
	return *s.data.UserID, true
}

// UserRole returns the stored role and whether identity is known.
func (s *Store) UserRole() (models.UserRole, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.UserRole == "" {
		return "", false
	}
	return models.UserRole(s.data.UserRole), true
}

// Clear wipes all fields. Used on logout; idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = sessionData{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// persistLocked writes the session atomically (temp file + rename) with
// owner-only permissions. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
