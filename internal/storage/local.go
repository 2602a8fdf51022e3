package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// LocalProvider stores files under a root directory on the local filesystem.
type LocalProvider struct {
	root string
}

func NewLocalProvider(root string) *LocalProvider {
	if root == "" {
		root = "local_fs"
	}
	return &LocalProvider{root: root}
}

func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) Write(ctx context.Context, path string, content []byte) error {
	full := filepath.Join(p.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

func (p *LocalProvider) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.root, filepath.FromSlash(path)))
}

func (p *LocalProvider) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(p.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (p *LocalProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(p.root, filepath.FromSlash(path)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
