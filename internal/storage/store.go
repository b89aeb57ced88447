package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the subset of object storage the API relies on. MinIOStorage
// implements it; tests use an in-memory fake.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
	PublicURL(key string) string
}

var extByType = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
}

// Extension returns the file extension stored for a content type, or "" when
// the type is not one we accept.
func Extension(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return extByType[ct]
}

// NewKey builds "<kind>/<owner>/<uuid><ext>".
func NewKey(kind, owner, contentType string) string {
	return path.Join(kind, owner, uuid.NewString()+Extension(contentType))
}

// PublicPrefix is the only key prefix readable without credentials.
// Certificates stay private and are handed out as presigned URLs.
const PublicPrefix = "avatars/"

// IsPublic reports whether key may be served anonymously.
func IsPublic(key string) bool {
	return CheckKey(key) == nil && strings.HasPrefix(key, PublicPrefix)
}

// CheckKey guards against keys escaping their prefix.
func CheckKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}

// Sniff detects the content type from the first 512 bytes of r and returns a
// reader that still yields the full stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
