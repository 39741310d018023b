package crawl

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cognicore/vntopic/pkg/vntopic/dataset"
	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
)

// CSVSink appends items to a BOM-prefixed CSV file, flushing every row.
type CSVSink struct {
	mu sync.Mutex
	f  *os.File
	w  *dataset.Writer
}

// NewCSVSink creates path and writes the header.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w, err := dataset.NewWriter(f, dataset.CrawlHeader)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &CSVSink{f: f, w: w}, nil
}

// Write implements Sink.
func (s *CSVSink) Write(_ context.Context, d ingest.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(dataset.CrawlRecord(d))
}

// Close closes the file.
func (s *CSVSink) Close() error {
	return s.f.Close()
}

// StoreSink upserts items into an article store by URL.
type StoreSink struct {
	Store store.ArticleStore
}

// Write implements Sink.
func (s StoreSink) Write(ctx context.Context, d ingest.Document) error {
	var pub time.Time
	if t, ok := d.Published.Get(); ok {
		pub = t
	}
	return s.Store.UpsertArticle(ctx, store.Article{
		URL:         d.Link.OrElse(""),
		Title:       d.Title.OrElse(""),
		Description: d.Description.OrElse(""),
		Body:        d.Text.OrElse(""),
		PublishedAt: pub,
		CrawledAt:   time.Now(),
	})
}

// MultiSink writes to every sink in order.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, d ingest.Document) error {
	for _, s := range m {
		if err := s.Write(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
