package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"go.uber.org/zap"
)

type fileRecord struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps the credential in a 0600 JSON file.
type FileStore struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log.Named("FileCredentialStore")}
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("FileStore.Load %s: %w", s.path, err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// повреждённый файл равносилен отсутствию токена
		s.logger.Warn("Ignoring unreadable credential file", zap.String("path", s.path), zap.Error(err))
		return "", nil
	}
	return rec.Token, nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("FileStore.Save mkdir: %w", err)
	}
	data, err := json.Marshal(fileRecord{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("FileStore.Save marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("FileStore.Save write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("FileStore.Save rename: %w", err)
	}
	s.logger.Debug("Credential persisted", zap.String("path", s.path))
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("FileStore.Clear %s: %w", s.path, err)
	}
	s.logger.Debug("Credential removed", zap.String("path", s.path))
	return nil
}
