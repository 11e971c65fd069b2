package core

import (
	"context"
	"io"
)

// FileStorage is any object store able to keep uploaded files and serve them by URL.
type FileStorage interface {
	// Put stores the content of r under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
