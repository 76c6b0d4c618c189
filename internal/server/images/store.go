// Package images stores uploaded post images and removes replaced ones in
// the background.
package images

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/pitstop/internal/filex"
	"github.com/google/uuid"
)

// PathPrefix is the first segment of every stored image path. The same
// prefix is used as the static route on the HTTP server.
const PathPrefix = "images"

// Store persists image bytes and hands back a relative path such as
// "images/2024-01-02T15:04:05Z-<uuid>-cat.png" that posts keep as imageUrl.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes the image at path. A path that does not exist is not
	// an error.
	Delete(ctx context.Context, path string) error
}

// Accepted reports whether contentType is one of the image types we take.
func Accepted(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png", "image/jpg", "image/jpeg":
		return true
	}
	return false
}

var now = time.Now

func newFileName(name string) string {
	return now().UTC().Format(time.RFC3339) + "-" + uuid.NewString() + "-" + filex.CleanName(name)
}

// IsStoredPath reports whether path has the shape Save hands out: the
// prefix followed by a single file name.
func IsStoredPath(path string) bool {
	key, ok := keyOf(path)
	return ok && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}

// keyOf strips the prefix from a stored path and returns the remainder.
func keyOf(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, PathPrefix+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
