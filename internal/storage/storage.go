// Package storage is the file-storage collaborator: store by path, retrieve
// by path. Access control happens before either call; this package only
// moves bytes.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no file is stored under the given path.
var ErrNotFound = errors.New("storage: not found")

// Store saves and retrieves documents by path.
type Store interface {
	// Save writes the document under the given name and returns the path a
	// later Open call retrieves it by.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
