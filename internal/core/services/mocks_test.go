package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// --- Mock implementations for service tests ---

// mockDocs implements driven.DocumentStore over a map.
type mockDocs struct {
	mu        sync.Mutex
	files     map[string][]byte
	createErr error
	removed   []string
}

func newMockDocs(files map[string]string) *mockDocs {
	m := &mockDocs{files: make(map[string][]byte)}
	for k, v := range files {
		m.files[k] = []byte(v)
	}
	return m
}

func (m *mockDocs) Read(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[url]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", url, domain.ErrNotFound)
	}
	return data, nil
}

func (m *mockDocs) Create(_ context.Context, url string) (io.WriteCloser, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &mockFile{docs: m, url: url}, nil
}

func (m *mockDocs) Remove(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	m.removed = append(m.removed, url)
	return nil
}

func (m *mockDocs) exists(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[url]
	return ok
}

func (m *mockDocs) content(url string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[url])
}

func (m *mockDocs) set(url, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[url] = []byte(content)
}

// mockFile stores its content on Close. Writes fail after failAfter bytes
// when failAfter > 0.
type mockFile struct {
	docs      *mockDocs
	url       string
	buf       bytes.Buffer
	failAfter int
}

func (f *mockFile) Write(p []byte) (int, error) {
	if f.failAfter > 0 && f.buf.Len()+len(p) > f.failAfter {
		return 0, errors.New("disk full")
	}
	return f.buf.Write(p)
}

func (f *mockFile) Close() error {
	f.docs.set(f.url, f.buf.String())
	return nil
}

// failingDocs wraps mockDocs with outputs that accept limit bytes.
type failingDocs struct {
	*mockDocs
	limit int
}

func (d *failingDocs) Create(_ context.Context, url string) (io.WriteCloser, error) {
	d.set(url, "")
	return &mockFile{docs: d.mockDocs, url: url, failAfter: d.limit}, nil
}

// mockRunStore implements driven.RunStore.
type mockRunStore struct {
	mu      sync.Mutex
	runs    []domain.ConversionRun
	saveErr error
	listErr error
}

func (m *mockRunStore) Save(_ context.Context, run domain.ConversionRun) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunStore) List(_ context.Context, limit int) ([]domain.ConversionRun, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.ConversionRun(nil), m.runs...)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRunStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = nil
	return nil
}

func (m *mockRunStore) saved() []domain.ConversionRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConversionRun(nil), m.runs...)
}

// mockWatcher implements driven.Watcher with a channel the test feeds.
type mockWatcher struct {
	changes chan string
	paths   []string
	err     error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{changes: make(chan string, 8)}
}

func (m *mockWatcher) Watch(_ context.Context, paths ...string) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.paths = paths
	return m.changes, nil
}

func (m *mockWatcher) Close() error { return nil }

// mockMapCache implements driven.TreeCache over a map.
type mockMapCache struct {
	trees map[uint64]*domain.MappingTree
	hits  int
}

func newMockMapCache() *mockMapCache {
	return &mockMapCache{trees: make(map[uint64]*domain.MappingTree)}
}

func (m *mockMapCache) Get(fp uint64) (*domain.MappingTree, bool) {
	t, ok := m.trees[fp]
	if ok {
		m.hits++
	}
	return t, ok
}

func (m *mockMapCache) Add(fp uint64, tree *domain.MappingTree) { m.trees[fp] = tree }
func (m *mockMapCache) Len() int                                { return len(m.trees) }

// Compile-time interface checks for the mocks.
var (
	_ driven.DocumentStore = (*mockDocs)(nil)
	_ driven.RunStore      = (*mockRunStore)(nil)
	_ driven.Watcher       = (*mockWatcher)(nil)
	_ driven.TreeCache     = (*mockMapCache)(nil)
)
