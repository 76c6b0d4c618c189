package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/filex"
)

// LocalStore keeps images in a directory on disk.
type LocalStore struct {
	root string
}

// NewLocalStore makes sure dir exists and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

// Root is the absolute directory images are written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if !Accepted(contentType) {
		return "", fmt.Errorf("content type %q: %w", contentType, ErrUnsupportedType)
	}

	fileName := newFileName(name)
	full, err := filex.Within(s.root, fileName)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o660)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close image: %w", err)
	}

	return PathPrefix + "/" + fileName, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	key, ok := keyOf(path)
	if !ok {
		return common.ErrInvalidImagePath
	}
	full, err := filex.Within(s.root, key)
	if err != nil {
		return common.ErrInvalidImagePath
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
