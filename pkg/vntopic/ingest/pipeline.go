package ingest

import (
	"log/slog"
	"strings"
	"sync"
)

// NormalizedDoc is a Document together with its normalized tokens.
type NormalizedDoc struct {
	Document
	Tokens []string
	Text   string // Tokens joined by single spaces
}

// Empty reports whether normalization left nothing behind.
func (d NormalizedDoc) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Pipeline orchestrates normalization and corpus filtering:
// raw document → tokens → drop documents that normalize to nothing.
type Pipeline struct {
	tokenizer *Tokenizer
	workers   int
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline. workers bounds concurrent
// normalization; values below 1 run sequentially.
func NewPipeline(tokenizer *Tokenizer, workers int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{tokenizer: tokenizer, workers: workers, logger: logger}
}

// Tokenizer returns the pipeline's tokenizer.
func (p *Pipeline) Tokenizer() *Tokenizer {
	return p.tokenizer
}

// Normalize normalizes every document. Output order matches input order.
func (p *Pipeline) Normalize(docs []Document) []NormalizedDoc {
	out := make([]NormalizedDoc, len(docs))
	do := func(i int) {
		tokens := p.tokenizer.Tokenize(docs[i].Text.OrElse(""))
		out[i] = NormalizedDoc{
			Document: docs[i],
			Tokens:   tokens,
			Text:     strings.Join(tokens, " "),
		}
	}

	if p.workers == 1 || len(docs) < 2 {
		for i := range docs {
			do(i)
		}
		return out
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				do(i)
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// Process normalizes and filters a corpus. It returns the surviving documents
// in input order and the Row numbers of those dropped.
func (p *Pipeline) Process(docs []Document) ([]NormalizedDoc, []int) {
	kept, dropped := FilterCorpus(p.Normalize(docs))
	p.logger.Info("corpus normalized",
		"documents", len(docs),
		"kept", len(kept),
		"dropped", len(dropped))
	return kept, dropped
}

// FilterCorpus removes documents whose normalized text is empty or blank,
// preserving the order and metadata of the rest.
func FilterCorpus(docs []NormalizedDoc) ([]NormalizedDoc, []int) {
	kept := make([]NormalizedDoc, 0, len(docs))
	var dropped []int
	for _, d := range docs {
		if d.Empty() {
			dropped = append(dropped, d.Row)
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}

// Texts returns the normalized text of each document.
func Texts(docs []NormalizedDoc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}
