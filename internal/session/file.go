package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var safeKey = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// FileStore keeps one token per file under Dir, readable by the owner only.
type FileStore struct {
	Dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	return &FileStore{Dir: dir}, nil
}

// DefaultDir is the per-user directory the CLI keeps its session in.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pms")
	}

	return filepath.Join(os.TempDir(), "pms")
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.Dir, safeKey.ReplaceAllString(key, "_"))
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (f *FileStore) Put(_ context.Context, key, token string) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, f.path(key))
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
