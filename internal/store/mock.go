package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/quantmind-br/coversync/internal/domain"
)

// ProviderMock is the manifest provider name of the dry-run store
const ProviderMock = "mock"

// MockStore is the dry-run blob store: nothing leaves the process and URLs
// are derived from a fixed host.
type MockStore struct {
	host    string
	mu      sync.Mutex
	objects map[string]domain.Object
	uploads int
}

// NewMockStore creates a dry-run store serving URLs under host
func NewMockStore(host string) *MockStore {
	return &MockStore{
		host:    strings.TrimRight(host, "/"),
		objects: make(map[string]domain.Object),
	}
}

// Name returns the provider name
func (s *MockStore) Name() string {
	return ProviderMock
}

// URL returns the URL the mock assigns to key
func (s *MockStore) URL(key string) string {
	return s.host + "/" + key
}

// Put records the object and returns its mock URL
func (s *MockStore) Put(ctx context.Context, key string, body []byte, opts domain.PutOptions) (*domain.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj := domain.Object{Key: key, URL: s.URL(key)}
	s.objects[key] = obj
	s.uploads++
	return &obj, nil
}

// List returns the recorded objects under prefix, ordered by key
func (s *MockStore) List(ctx context.Context, prefix string) ([]domain.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Object
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Uploads returns the number of Put calls served
func (s *MockStore) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}
