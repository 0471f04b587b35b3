package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes photo files under a public directory and serves
// them by URL prefix. It exists for single-node deployments where no
// object store is available.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{
		dir:     strings.TrimSpace(dir),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (s *LocalStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("uploads dir is empty")
	}
	if key == "" || body == nil {
		return "", ErrValidation
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *LocalStorage) Remove(ctx context.Context, url string) error {
	if s.dir == "" || url == "" {
		return nil
	}

	key := strings.TrimPrefix(url, s.baseURL+"/")
	if key == url || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("url %q is outside the uploads prefix", url)
	}

	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}

	return nil
}
