// Package dataset reads and writes the tabular corpus. CSV output always
// starts with a UTF-8 byte-order mark so spreadsheet tools pick the right
// encoding for Vietnamese text.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// BOM is the UTF-8 byte-order mark.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Output column names appended by WriteCSV.
const (
	ColCleanText     = "clean_text"
	ColTopicID       = "topic_id"
	ColTopicName     = "topic_name"
	ColTopicKeywords = "topic_keywords"
)

// Columns maps document attributes to CSV headers. Only Text is required;
// an empty name disables an optional column.
type Columns struct {
	Text        string
	Date        string
	Title       string
	Link        string
	Description string
}

// DefaultColumns matches the crawler's output.
func DefaultColumns() Columns {
	return Columns{Text: "content_text", Date: "date", Title: "title", Link: "link", Description: "sapo"}
}

// DateLayouts are tried in order when parsing the date column.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
}

// Table is a parsed CSV file. Records keeps the raw cells so output can
// carry every original column through unchanged.
type Table struct {
	Header  []string
	Records [][]string
	Docs    []ingest.Document
}

// ParseDate parses s with DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, internalerr.ErrInvalidInput)
}

// ReadCSV parses a CSV stream with a header row. A leading BOM is ignored.
func ReadCSV(r io.Reader, cols Columns) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(BOM)); err == nil && bytes.Equal(head, BOM) {
		br.Discard(len(BOM))
	}

	cr := csv.NewReader(br)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty input: %w", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	textIdx, ok := pos[cols.Text]
	if !ok {
		return nil, fmt.Errorf("csv: column %q: %w", cols.Text, internalerr.ErrMissingColumn)
	}
	idx := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	dateIdx, titleIdx, linkIdx, descIdx := idx(cols.Date), idx(cols.Title), idx(cols.Link), idx(cols.Description)
	known := map[int]bool{textIdx: true, dateIdx: true, titleIdx: true, linkIdx: true, descIdx: true}

	t := &Table{Header: header}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w: %v", internalerr.ErrInvalidInput, err)
		}

		doc := ingest.Document{Row: row, Text: ingest.Text(rec[textIdx])}
		if titleIdx >= 0 {
			doc.Title = ingest.Text(rec[titleIdx])
		}
		if linkIdx >= 0 {
			doc.Link = ingest.Text(rec[linkIdx])
		}
		if descIdx >= 0 {
			doc.Description = ingest.Text(rec[descIdx])
		}
		if dateIdx >= 0 && strings.TrimSpace(rec[dateIdx]) != "" {
			d, err := ParseDate(rec[dateIdx])
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %q: %w", row+1, cols.Date, err)
			}
			doc.Published = ingest.Some(d)
		}
		for i, h := range header {
			if known[i] {
				continue
			}
			if doc.Extra == nil {
				doc.Extra = make(map[string]string)
			}
			doc.Extra[h] = rec[i]
		}

		t.Records = append(t.Records, rec)
		t.Docs = append(t.Docs, doc)
	}
	return t, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, cols)
}

// Enrichment is the per-row pipeline output appended to the input columns.
type Enrichment struct {
	Row       int
	CleanText string
	TopicID   int
	TopicName string
	Keywords  []string
}

// WriteCSV writes the original columns of each enriched row followed by
// clean_text, topic_id, topic_name and topic_keywords.
func WriteCSV(w io.Writer, t *Table, rows []Enrichment) error {
	header := append(append([]string(nil), t.Header...), ColCleanText, ColTopicID, ColTopicName, ColTopicKeywords)
	cw, err := NewWriter(w, header)
	if err != nil {
		return err
	}
	for _, e := range rows {
		if e.Row < 0 || e.Row >= len(t.Records) {
			return fmt.Errorf("csv: enriched row %d not in table: %w", e.Row, internalerr.ErrInvalidInput)
		}
		rec := append(append([]string(nil), t.Records[e.Row]...),
			e.CleanText,
			strconv.Itoa(e.TopicID),
			e.TopicName,
			strings.Join(e.Keywords, ", "),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVFile creates path and writes it with WriteCSV.
func WriteCSVFile(path string, t *Table, rows []Enrichment) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, t, rows)
}

// Writer streams CSV rows, flushing after each one so a crashed run keeps
// everything written so far.
type Writer struct {
	cw *csv.Writer
}

// NewWriter writes the BOM and header to w.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	if _, err := w.Write(BOM); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	cw := csv.NewWriter(w)
	out := &Writer{cw: cw}
	if err := out.Write(header); err != nil {
		return nil, err
	}
	return out, nil
}

// Write writes and flushes one record.
func (w *Writer) Write(rec []string) error {
	if err := w.cw.Write(rec); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

// CrawlHeader is the column layout the crawler writes.
var CrawlHeader = []string{"date", "title", "sapo", "content_text", "link"}

// CrawlRecord lays out a document in CrawlHeader order.
func CrawlRecord(d ingest.Document) []string {
	date := ""
	if t, ok := d.Published.Get(); ok {
		date = t.Format("2006-01-02")
	}
	return []string{date, d.Title.OrElse(""), d.Description.OrElse(""), d.Text.OrElse(""), d.Link.OrElse("")}
}

// TableFromDocs builds a table for documents that did not come from CSV,
// such as JSON Lines input.
func TableFromDocs(docs []ingest.Document) *Table {
	t := &Table{Header: append([]string(nil), CrawlHeader...)}
	for i, d := range docs {
		d.Row = i
		t.Records = append(t.Records, CrawlRecord(d))
		t.Docs = append(t.Docs, d)
	}
	return t
}
