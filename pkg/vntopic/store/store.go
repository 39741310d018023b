package store

import (
	"context"
	"time"
)

// Store persists named artifact blobs. Each Put replaces the whole blob.
type Store interface {
	Close() error

	Put(ctx context.Context, name string, blob []byte) error
	// Get returns internalerr.ErrNotFound when no blob has that name.
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// ArticleStore is implemented by backends that also keep crawled articles.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, a Article) error
	GetArticleByURL(ctx context.Context, url string) (Article, bool, error)
	ListArticles(ctx context.Context, limit int) ([]Article, error)
}

// Article is one crawled news item. A zero PublishedAt means the date was
// not found on the page.
type Article struct {
	ID          int64
	URL         string
	Title       string
	Description string
	Body        string
	PublishedAt time.Time
	CrawledAt   time.Time
}
