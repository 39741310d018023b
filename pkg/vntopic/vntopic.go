// Package vntopic wires the normalizer, vocabulary selector, encoder, topic
// model and labeler into one batch pipeline for Vietnamese news.
//
// Fit runs every stage on a corpus. Apply reuses a fitted (or loaded)
// encoder and model on new documents without refitting. Topic numbering is
// only meaningful within one fitted model; see package topic.
package vntopic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/vntopic/pkg/vntopic/coherence"
	"github.com/cognicore/vntopic/pkg/vntopic/config"
	"github.com/cognicore/vntopic/pkg/vntopic/dataset"
	"github.com/cognicore/vntopic/pkg/vntopic/encode"
	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/label"
	"github.com/cognicore/vntopic/pkg/vntopic/stoplist"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
	"github.com/cognicore/vntopic/pkg/vntopic/topic"
	"github.com/cognicore/vntopic/pkg/vntopic/vocab"
)

// Options configures a Pipeline.
type Options struct {
	Ingest     *ingest.Pipeline
	Vocabulary vocab.Params
	Weighting  encode.Weighting
	Model      topic.Config
	Labeler    label.Options
	// Normalizer is recorded in the artifact manifest when set.
	Normalizer *config.Normalizer
	Logger     *slog.Logger
}

// DefaultOptions uses the built-in Vietnamese tokenizer and default stages.
func DefaultOptions() Options {
	return Options{
		Vocabulary: vocab.DefaultParams(),
		Weighting:  encode.Count,
		Model:      topic.DefaultConfig(),
		Labeler:    label.DefaultOptions(),
	}
}

// Pipeline is the topic pipeline facade.
type Pipeline struct {
	opts    Options
	ingest  *ingest.Pipeline
	labeler *label.Labeler
	logger  *slog.Logger
	fitted  *Fitted
}

// Fitted is everything a later process needs to apply the pipeline.
type Fitted struct {
	RunID     string
	Encoder   *encode.Encoder
	Model     *topic.Model
	Labels    []label.Label
	Matrix    *encode.Matrix
	Documents int
	CreatedAt time.Time
}

// EnrichedRow is one surviving document with its topic.
type EnrichedRow struct {
	Document  ingest.Document
	CleanText string
	TopicID   int
	TopicName string
	Keywords  []string
	Weights   []float64
}

// Result is the output of Fit or Apply.
type Result struct {
	Rows    []EnrichedRow
	Dropped []int // input Row numbers removed by the corpus filter
	Labels  []label.Label
	Matrix  *encode.Matrix
	// Report, Suggestions and Coherence are only set by Fit.
	Report      vocab.Report
	Suggestions []stoplist.Candidate
	Coherence   []coherence.Topic
}

// New validates the options and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.Vocabulary.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Model.Validate(); err != nil {
		return nil, err
	}
	if opts.Weighting == "" {
		opts.Weighting = encode.Count
	}
	lb, err := label.New(opts.Labeler)
	if err != nil {
		return nil, err
	}
	ing := opts.Ingest
	if ing == nil {
		ing = ingest.NewPipeline(ingest.NewTokenizer(stoplist.Vietnamese), 1, logger)
	}
	return &Pipeline{opts: opts, ingest: ing, labeler: lb, logger: logger}, nil
}

// FromConfig builds a Pipeline from a validated run configuration.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comp, err := config.NewLoader(cfg.Normalizer).Load()
	if err != nil {
		return nil, err
	}
	norm := cfg.Normalizer
	return New(Options{
		Ingest:     ingest.NewPipeline(comp.Tokenizer, cfg.Normalizer.Workers, logger),
		Normalizer: &norm,
		Vocabulary: cfg.Vocabulary,
		Weighting:  cfg.Encoder.Weighting,
		Model:      cfg.Model,
		Labeler:    cfg.Labeler,
		Logger:     logger,
	})
}

// Fitted returns the current fitted state, or nil.
func (p *Pipeline) Fitted() *Fitted {
	return p.fitted
}

// Fit runs every stage on docs and keeps the fitted state for Apply and
// SaveArtifacts.
func (p *Pipeline) Fit(ctx context.Context, docs []ingest.Document) (*Result, error) {
	kept, dropped := p.ingest.Process(docs)
	if len(kept) == 0 {
		return nil, fmt.Errorf("fit: %w: all %d documents are empty after normalization", internalerr.ErrEmptyCorpus, len(docs))
	}

	tokens := tokenLists(kept)
	sel, err := vocab.NewSelector(p.opts.Vocabulary, p.logger)
	if err != nil {
		return nil, err
	}
	v, report, err := sel.Fit(tokens)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	enc, err := encode.NewEncoder(v, p.opts.Weighting)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	m := enc.Transform(tokens)
	p.logger.Info("corpus encoded", "docs", m.Rows, "terms", m.Cols, "nnz", m.NNZ(), "weighting", enc.Weighting)

	fitted, err := topic.Fit(ctx, m, p.opts.Model, p.logger)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	labels, err := p.labeler.Label(fitted.Model.Components, v)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	p.fitted = &Fitted{
		RunID:     store.NewRunID(),
		Encoder:   enc,
		Model:     fitted.Model,
		Labels:    labels,
		Matrix:    m,
		Documents: len(kept),
		CreatedAt: time.Now().UTC(),
	}

	res := &Result{
		Rows:    enrich(kept, fitted.DocTopic, labels),
		Dropped: dropped,
		Labels:  labels,
		Matrix:  m,
		Report:  report,
	}
	res.Coherence = coherence.Score(labels, tokens, p.opts.Labeler.TopN)
	p.logger.Info("topic coherence", "mean_npmi", coherence.Mean(res.Coherence))
	if len(report.HighDF) > 0 {
		mgr := stoplist.NewManager(nil)
		res.Suggestions = mgr.SuggestCandidates(report.HighDF, stoplist.Thresholds{DFPercent: p.opts.Vocabulary.MaxDocFreqRatio * 100})
		for _, c := range res.Suggestions {
			p.logger.Debug("stopword candidate", "token", c.Token, "df_percent", c.Reason.DFPercent)
		}
	}
	p.logger.Info("pipeline fitted", "run_id", p.fitted.RunID, "rows", len(res.Rows), "dropped", len(dropped))
	return res, nil
}

// Apply normalizes and encodes docs with the frozen encoder and assigns
// topics with the fitted model. It never refits.
func (p *Pipeline) Apply(ctx context.Context, docs []ingest.Document) (*Result, error) {
	if p.fitted == nil {
		return nil, fmt.Errorf("apply: no fitted model: %w", internalerr.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kept, dropped := p.ingest.Process(docs)
	m := p.fitted.Encoder.Transform(tokenLists(kept))
	dt, err := p.fitted.Model.Transform(m)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	return &Result{
		Rows:    enrich(kept, dt, p.fitted.Labels),
		Dropped: dropped,
		Labels:  p.fitted.Labels,
		Matrix:  m,
	}, nil
}

// Enrichments converts rows for dataset.WriteCSV.
func (r *Result) Enrichments() []dataset.Enrichment {
	out := make([]dataset.Enrichment, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = dataset.Enrichment{
			Row:       row.Document.Row,
			CleanText: row.CleanText,
			TopicID:   row.TopicID,
			TopicName: row.TopicName,
			Keywords:  row.Keywords,
		}
	}
	return out
}

// DocTopic returns the topic distribution of every row.
func (r *Result) DocTopic() [][]float64 {
	out := make([][]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Weights
	}
	return out
}

func tokenLists(docs []ingest.NormalizedDoc) [][]string {
	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = d.Tokens
	}
	return out
}

func enrich(docs []ingest.NormalizedDoc, docTopic [][]float64, labels []label.Label) []EnrichedRow {
	byTopic := label.ByTopic(labels)
	assigned := topic.Assign(docTopic)
	rows := make([]EnrichedRow, len(docs))
	for i, d := range docs {
		lb := byTopic[assigned[i]]
		rows[i] = EnrichedRow{
			Document:  d.Document,
			CleanText: d.Text,
			TopicID:   assigned[i],
			TopicName: lb.Name,
			Keywords:  lb.Keywords,
			Weights:   docTopic[i],
		}
	}
	return rows
}
