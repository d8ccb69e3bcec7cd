package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores documents on the local filesystem under a single root
// directory. Names are flattened to their base component so a crafted
// name cannot escape the root.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns the store.
func NewLocal(root string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", errors.New("storage: file name is required")
	}
	path := filepath.Join(l.root, base)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", base, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: write %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: close %s: %w", base, err)
	}
	return path, nil
}

func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	// Only paths inside the root are served, whatever the store recorded.
	resolved := filepath.Join(l.root, filepath.Base(path))
	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
