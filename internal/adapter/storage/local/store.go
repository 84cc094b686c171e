// Package local stores uploaded files on the local filesystem.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// Store writes files under a root directory.
type Store struct {
	root string
}

// New creates the root directory if needed.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("op=local.new: %w: empty upload dir", domain.ErrInvalidArgument)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("op=local.new: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(key string) (string, error) {
	clean := filepath.Base(filepath.Clean(key))
	if clean == "." || clean == string(filepath.Separator) || clean != key {
		return "", fmt.Errorf("%w: invalid key %q", domain.ErrInvalidArgument, key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes data under key. contentType is ignored on disk.
func (s *Store) Put(ctx domain.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("op=local.put: %w", err)
	}
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("op=local.put: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("op=local.put: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("op=local.put: %w", err)
	}
	return nil
}

// Delete removes key. A missing file is not an error.
func (s *Store) Delete(ctx domain.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("op=local.delete: %w", err)
	}
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("op=local.delete: %w", err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("op=local.delete: %w", err)
	}
	return nil
}
