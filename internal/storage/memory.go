package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps objects in process memory. It backs unit tests and
// development runs without MinIO.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	grants  map[string]memoryGrant
	baseURL string
}

type memoryGrant struct {
	key   string
	until time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		grants:  make(map[string]memoryGrant),
		baseURL: baseURL,
	}
}

func (m *MemoryStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PresignedURL issues a one-key token valid for expires. Granted checks it.
func (m *MemoryStore) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrObjectNotFound
	}
	now := time.Now()
	for tok, g := range m.grants {
		if now.After(g.until) {
			delete(m.grants, tok)
		}
	}
	tok := uuid.NewString()
	m.grants[tok] = memoryGrant{key: key, until: now.Add(expires)}
	return m.PublicURL(key) + "?" + url.Values{"token": {tok}}.Encode(), nil
}

// Granted reports whether token was issued by PresignedURL for key and has
// not expired.
func (m *MemoryStore) Granted(key, token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grants[token]
	return ok && g.key == key && time.Now().Before(g.until)
}

func (m *MemoryStore) PublicURL(key string) string {
	return m.baseURL + "/" + key
}

// Object returns a stored object's bytes and content type.
func (m *MemoryStore) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}

// Len is the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
