// Package crawl collects news items from a paginated listing site such as
// a VnExpress category. Each accepted item is handed to a Sink as soon as
// it is found, so an interrupted run keeps its partial output.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Selectors locate fields in listing and article pages.
type Selectors struct {
	Item        string
	TitleLink   string
	Description string
	ArticleDate string
}

// DefaultSelectors match VnExpress markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:        "article.item-news",
		TitleLink:   "h3.title-news a",
		Description: "p.description a",
		ArticleDate: "span.date",
	}
}

// Config controls one crawl.
type Config struct {
	BaseURL             string
	PageURLFormat       string // applied to BaseURL and page number for pages >= 2
	TargetCount         int
	MaxPages            int
	MaxConsecutiveEmpty int
	RequestsPerSecond   float64
	Burst               int
	MaxRetries          int
	BackoffBase         time.Duration
	BackoffMax          time.Duration
	Timeout             time.Duration
	UserAgent           string
	SkipLinkPatterns    []string
	FetchArticleDate    bool
	RequireDescription  bool
	RequireDate         bool
	Selectors           Selectors
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return internalerr.Param("base_url", c.BaseURL, "must not be empty")
	case c.TargetCount <= 0:
		return internalerr.Param("target_count", c.TargetCount, "must be > 0")
	case c.MaxPages <= 0:
		return internalerr.Param("max_pages", c.MaxPages, "must be > 0")
	case c.MaxConsecutiveEmpty <= 0:
		return internalerr.Param("max_consecutive_empty", c.MaxConsecutiveEmpty, "must be > 0")
	case c.RequestsPerSecond <= 0:
		return internalerr.Param("requests_per_second", c.RequestsPerSecond, "must be > 0")
	case c.MaxRetries < 0:
		return internalerr.Param("max_retries", c.MaxRetries, "must be >= 0")
	}
	return nil
}

// Stop reasons reported in Stats.
const (
	StopTarget           = "target_count"
	StopMaxPages         = "max_pages"
	StopConsecutiveEmpty = "consecutive_empty"
	StopCanceled         = "canceled"
)

// Stats summarizes a crawl.
type Stats struct {
	Pages       int
	FailedPages int
	Accepted    int
	Duplicates  int
	Skipped     int // filtered by link pattern
	Incomplete  int // missing a required field
	StopReason  string
}

// Sink receives accepted items in crawl order.
type Sink interface {
	Write(ctx context.Context, doc ingest.Document) error
}

// Crawler walks listing pages.
type Crawler struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	jitter  func(time.Duration) time.Duration
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Crawler) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// New builds a Crawler. Zero values fall back to sensible defaults.
func New(cfg Config, opts ...Option) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PageURLFormat == "" {
		cfg.PageURLFormat = "%s-p%d"
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors()
	}

	c := &Crawler{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  slog.Default(),
		jitter: func(d time.Duration) time.Duration {
			if d <= 0 {
				return 0
			}
			return rand.N(d/2 + 1)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PageURL returns the listing URL of page n (1-based).
func (c *Crawler) PageURL(n int) string {
	if n <= 1 {
		return c.cfg.BaseURL
	}
	return fmt.Sprintf(c.cfg.PageURLFormat, c.cfg.BaseURL, n)
}

// Run crawls until the target count is reached, MaxPages listing pages have
// been visited, or MaxConsecutiveEmpty pages in a row yield nothing new. A
// page that keeps failing after retries counts as empty. A Sink error or
// context cancellation ends the run with an error; items already written
// stay written.
func (c *Crawler) Run(ctx context.Context, sink Sink) (Stats, error) {
	var st Stats
	seen := make(map[string]bool)
	empty := 0

	c.logger.Info("crawl started", "base_url", c.cfg.BaseURL, "target", c.cfg.TargetCount)
	for page := 1; ; page++ {
		if st.Accepted >= c.cfg.TargetCount {
			st.StopReason = StopTarget
			break
		}
		if page > c.cfg.MaxPages {
			st.StopReason = StopMaxPages
			break
		}

		pageURL := c.PageURL(page)
		doc, err := c.fetch(ctx, pageURL)
		st.Pages++
		if err != nil {
			if ctx.Err() != nil {
				st.StopReason = StopCanceled
				return st, ctx.Err()
			}
			st.FailedPages++
			c.logger.Warn("listing page failed", "page", page, "url", pageURL, "error", err)
			if empty++; empty >= c.cfg.MaxConsecutiveEmpty {
				st.StopReason = StopConsecutiveEmpty
				break
			}
			continue
		}

		added := 0
		for _, item := range c.extractListing(doc, pageURL) {
			if st.Accepted >= c.cfg.TargetCount {
				break
			}
			link := item.Link.OrElse("")
			if c.skipLink(link) {
				st.Skipped++
				continue
			}
			if seen[link] {
				st.Duplicates++
				continue
			}
			seen[link] = true

			if c.cfg.FetchArticleDate && !item.Published.Present() {
				item.Published = c.articleDate(ctx, link)
				if ctx.Err() != nil {
					st.StopReason = StopCanceled
					return st, ctx.Err()
				}
			}
			if !c.complete(item) {
				st.Incomplete++
				continue
			}

			item.Row = st.Accepted
			if err := sink.Write(ctx, item); err != nil {
				return st, fmt.Errorf("crawl: write %s: %w", link, err)
			}
			st.Accepted++
			added++
		}

		c.logger.Debug("listing page done", "page", page, "added", added, "total", st.Accepted)
		if added == 0 {
			if empty++; empty >= c.cfg.MaxConsecutiveEmpty {
				st.StopReason = StopConsecutiveEmpty
				break
			}
		} else {
			empty = 0
		}
	}

	c.logger.Info("crawl finished",
		"accepted", st.Accepted,
		"pages", st.Pages,
		"failed_pages", st.FailedPages,
		"duplicates", st.Duplicates,
		"stop", st.StopReason)
	return st, nil
}

func (c *Crawler) skipLink(link string) bool {
	for _, p := range c.cfg.SkipLinkPatterns {
		if p != "" && strings.Contains(link, p) {
			return true
		}
	}
	return false
}

func (c *Crawler) complete(d ingest.Document) bool {
	if d.Validate() != nil {
		return false
	}
	if c.cfg.RequireDescription && !d.Description.Present() {
		return false
	}
	if c.cfg.RequireDate && !d.Published.Present() {
		return false
	}
	return true
}

// articleDate fetches an article page for its publication date. Any
// failure yields a missing date.
func (c *Crawler) articleDate(ctx context.Context, link string) ingest.Field[time.Time] {
	doc, err := c.fetch(ctx, link)
	if err != nil {
		c.logger.Debug("article date unavailable", "url", link, "error", err)
		return ingest.None[time.Time]()
	}
	return c.extractDate(doc)
}

var errPermanent = errors.New("permanent failure")

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Crawler) backoff(attempt int) time.Duration {
	d := c.cfg.BackoffBase << attempt
	if d <= 0 || d > c.cfg.BackoffMax {
		d = c.cfg.BackoffMax
	}
	return d + c.jitter(d)
}
