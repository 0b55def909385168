package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Store abstracts how the session is persisted (file on disk, in-memory).
type Store interface {
	Load() (Session, bool, error)
	Save(Session) error
	Clear() error
}

// FileStore persists the session as YAML so a new process restores it
// without re-authentication.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session file: %w", err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("parse session file: %w", err)
	}
	if sess.Token == "" {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *FileStore) Save(sess Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	// 0600: the file holds a bearer token.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token implements api.TokenSource: an expired token counts as absent, so
// authenticated calls fail fast instead of bouncing off a 401.
func (s *FileStore) Token() (string, bool) {
	sess, ok, err := s.Load()
	if err != nil || !ok {
		return "", false
	}
	if sess.Expired(time.Now()) {
		return "", false
	}
	return sess.Token, true
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.RWMutex
	sess Session
	set  bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load() (Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess, s.set, nil
}

func (s *MemStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess, s.set = sess, true
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess, s.set = Session{}, false
	return nil
}

func (s *MemStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set || s.sess.Expired(time.Now()) {
		return "", false
	}
	return s.sess.Token, true
}
