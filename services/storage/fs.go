package storagesvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// FSStorage keeps files under a base directory, served by the API under BaseURL.
type FSStorage struct {
	baseDir string
	baseURL string
}

var _ core.FileStorage = (*FSStorage)(nil)

func NewFSStorage(baseDir, baseURL string) (*FSStorage, error) {
	if baseDir == "" {
		baseDir = "media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating "+baseDir)
	}
	return &FSStorage{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *FSStorage) BaseDir() string { return s.baseDir }

func (s *FSStorage) path(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return "", errors.New("empty key")
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func (s *FSStorage) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "creating directory")
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "creating "+key)
	}
	defer f.Close()
	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing "+key)
	}
	return s.baseURL + "/" + path.Clean("/" + key)[1:], nil
}

func (s *FSStorage) Delete(_ context.Context, key string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting "+key)
	}
	return nil
}
