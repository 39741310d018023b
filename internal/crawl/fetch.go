package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
)

// fetch GETs pageURL through the rate limiter, retrying transport errors,
// 429 and 5xx responses with exponential backoff and jitter.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithCtx(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		doc, err := c.get(ctx, pageURL)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if errors.Is(err, errPermanent) {
			break
		}
		c.logger.Debug("fetch retry", "url", pageURL, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *Crawler) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w: %w", errPermanent, err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status: %d: %w", resp.StatusCode, errPermanent)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// extractListing pulls items from a listing page. Items without a title
// link are dropped; other missing fields stay None.
func (c *Crawler) extractListing(doc *goquery.Document, pageURL string) []ingest.Document {
	sel := c.cfg.Selectors
	var out []ingest.Document
	doc.Find(sel.Item).Each(func(_ int, article *goquery.Selection) {
		a := article.Find(sel.TitleLink).First()
		title := collapse(a.Text())
		href, ok := a.Attr("href")
		link := resolveURL(pageURL, href)
		if !ok || title == "" || link == "" {
			return
		}

		d := ingest.Document{
			Title:       ingest.Text(title),
			Link:        ingest.Text(link),
			Description: ingest.Text(collapse(article.Find(sel.Description).First().Text())),
		}
		d.Text = ingest.Text(strings.TrimSpace(title + " " + d.Description.OrElse("")))
		if dt := article.Find(sel.ArticleDate).First(); dt.Length() > 0 {
			d.Published = parseDateText(dt.Text())
		}
		out = append(out, d)
	})
	return out
}

func (c *Crawler) extractDate(doc *goquery.Document) ingest.Field[time.Time] {
	return parseDateText(doc.Find(c.cfg.Selectors.ArticleDate).First().Text())
}

var dateRe = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)

// parseDateText finds a dd/mm/yyyy date in text such as
// "Chủ nhật, 21/1/2024, 10:00 (GMT+7)".
func parseDateText(s string) ingest.Field[time.Time] {
	m := dateRe.FindString(s)
	if m == "" {
		return ingest.None[time.Time]()
	}
	t, err := time.Parse("2/1/2006", m)
	if err != nil {
		return ingest.None[time.Time]()
	}
	return ingest.Some(t)
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
