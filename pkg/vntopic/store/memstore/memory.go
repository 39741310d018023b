package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	blobs    map[string][]byte
	articles map[int64]store.Article
	urlIndex map[string]int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		blobs:    make(map[string][]byte),
		articles: make(map[int64]store.Article),
		urlIndex: make(map[string]int64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Put stores a copy of blob.
func (s *Store) Put(ctx context.Context, name string, blob []byte) error {
	if name == "" {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = append([]byte(nil), blob...)
	return nil
}

// Get returns a copy of the named blob.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[name]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// List returns stored names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.blobs))
	for n := range s.blobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// UpsertArticle inserts or updates an article, keyed by URL.
func (s *Store) UpsertArticle(ctx context.Context, a store.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.URL == "" {
		return nil
	}
	id, ok := s.urlIndex[a.URL]
	if !ok {
		id = s.nextID
		s.nextID++
		s.urlIndex[a.URL] = id
	}
	a.ID = id
	s.articles[id] = a
	return nil
}

// GetArticleByURL looks an article up by link.
func (s *Store) GetArticleByURL(ctx context.Context, url string) (store.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.urlIndex[url]
	if !ok {
		return store.Article{}, false, nil
	}
	return s.articles[id], true, nil
}

// ListArticles returns articles in insertion order. limit <= 0 means all.
func (s *Store) ListArticles(ctx context.Context, limit int) ([]store.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]store.Article, len(ids))
	for i, id := range ids {
		out[i] = s.articles[id]
	}
	return out, nil
}

var (
	_ store.Store        = (*Store)(nil)
	_ store.ArticleStore = (*Store)(nil)
)
