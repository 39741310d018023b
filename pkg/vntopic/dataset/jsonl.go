package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Item is one crawled article in JSON Lines form.
type Item struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"sapo,omitempty"`
	Text        string     `json:"text,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Document converts the item. Without body text the title and description
// stand in for it, as the crawler does when it builds content_text.
func (it Item) Document(row int) ingest.Document {
	text := it.Text
	if strings.TrimSpace(text) == "" {
		text = strings.TrimSpace(it.Title + " " + it.Description)
	}
	doc := ingest.Document{
		Row:         row,
		Text:        ingest.Text(text),
		Title:       ingest.Text(it.Title),
		Description: ingest.Text(it.Description),
		Link:        ingest.Text(it.URL),
	}
	if it.PublishedAt != nil && !it.PublishedAt.IsZero() {
		doc.Published = ingest.Some(*it.PublishedAt)
	}
	return doc
}

// ReadJSONL reads one Item per line. Malformed lines are skipped and logged.
func ReadJSONL(r io.Reader, logger *slog.Logger) ([]ingest.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var docs []ingest.Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var it Item
		if err := json.Unmarshal([]byte(text), &it); err != nil {
			logger.Warn("skipping malformed json line", "line", line, "error", err)
			continue
		}
		docs = append(docs, it.Document(len(docs)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("jsonl: no valid items: %w", internalerr.ErrInvalidInput)
	}
	return docs, nil
}

// ReadJSONLFile opens path and parses it with ReadJSONL.
func ReadJSONLFile(path string, logger *slog.Logger) ([]ingest.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSONL(f, logger)
}
