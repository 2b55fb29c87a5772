package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV persists each key as a 0600 file under a private directory.
type FileKV struct {
	basePath string
}

// NewFileKV initializes a FileKV rooted at basePath.
func NewFileKV(basePath string) (*FileKV, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("session: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("session: ensure base path: %w", err)
	}
	return &FileKV{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileKV) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

func (s *FileKV) Get(ctx context.Context, key string) (string, error) {
	path, err := s.path(ctx, key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("session: read %s: %w", key, err)
	}
	return string(data), nil
}

// Set writes through a temp file and rename so a crash never leaves a torn value.
func (s *FileKV) Set(ctx context.Context, key, value string) error {
	path, err := s.path(ctx, key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.basePath, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("session: chmod temp file: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("session: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("session: write %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) Delete(ctx context.Context, key string) error {
	path, err := s.path(ctx, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: delete %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) path(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", errors.New("session: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, clean), nil
}

// sanitizeKey keeps keys to a single flat file name inside the store root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("session: key is required")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("session: invalid key %q", key)
	}
	return key, nil
}
