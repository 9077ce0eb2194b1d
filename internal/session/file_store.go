package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

// FileStore persists the session as a JSON document readable only by the owner
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path; the file is created on first Save
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return nil, s.discard(err)
	}
	if rec == nil {
		return nil, nil
	}

	sess, err := decodeRecord(*rec)
	if err != nil {
		return nil, s.discard(err)
	}
	return sess, nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.read()
	if err != nil {
		// unreadable previous state is simply replaced
		prev = nil
	}

	next, _, err := nextRecord(prev, token)
	if err != nil {
		return err
	}
	return s.write(next)
}

func (s *FileStore) SaveShadow(_ context.Context, shadow Shadow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return s.discard(err)
	}
	if rec == nil {
		return fmt.Errorf("%w: no session to attach status to", apperrors.ErrInvalidToken)
	}

	rec.Shadow = &shadow
	return s.write(*rec)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *FileStore) read() (*record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	return &rec, nil
}

// write replaces the file atomically so a crash never leaves half a token
func (s *FileStore) write(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// discard clears the persisted value after a decode failure
func (s *FileStore) discard(cause error) error {
	if !errors.Is(cause, apperrors.ErrInvalidToken) {
		return cause
	}
	logCorruptSession("file", cause)
	if err := s.remove(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
