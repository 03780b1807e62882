// Package storage persists uploaded menu images and hands back stable paths.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/config"
)

// Store accepts uploaded files and deletes them by the returned path.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}

// Module provides the file store to Fx.
var Module = fx.Provide(NewStore)

// NewStore builds a disk-backed store rooted at the configured upload dir.
func NewStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{root: cfg.Storage.UploadDir, logger: logger}, nil
}

type diskStore struct {
	root   string
	logger *zap.Logger
}

// Save writes the upload under a random name, keeping the original extension.
func (s *diskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.logger.Debug("stored upload", zap.String("path", path))
	return path, nil
}

// Delete removes a stored file. Paths outside the upload root are rejected.
func (s *diskStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, filepath.Clean(s.root)+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload dir", path)
	}
	if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
