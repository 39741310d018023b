// Package label names topics after their heaviest terms.
package label

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/vocab"
)

// Label is the persisted description of one topic.
type Label struct {
	Topic    int       `json:"topic"`
	Name     string    `json:"name"`
	Keywords []string  `json:"keywords"`
	Weights  []float64 `json:"weights"`
}

// KeywordString joins keywords with ", " for tabular output.
func (l Label) KeywordString() string {
	return strings.Join(l.Keywords, ", ")
}

// Options configures a Labeler.
type Options struct {
	TopN      int    `yaml:"top_n" json:"top_n"`
	NameTerms int    `yaml:"name_terms" json:"name_terms"`
	Separator string `yaml:"separator" json:"separator"`
}

// DefaultOptions returns ten keywords and three-term names joined by " - ".
func DefaultOptions() Options {
	return Options{TopN: 10, NameTerms: 3, Separator: " - "}
}

// Validate names the first bad option.
func (o Options) Validate() error {
	if o.TopN <= 0 {
		return internalerr.Param("top_n", o.TopN, "must be > 0")
	}
	if o.NameTerms <= 0 {
		return internalerr.Param("name_terms", o.NameTerms, "must be > 0")
	}
	return nil
}

// Labeler builds labels from topic-term weights.
type Labeler struct {
	opts  Options
	title cases.Caser
}

// New creates a Labeler.
func New(opts Options) (*Labeler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Labeler{opts: opts, title: cases.Title(language.Vietnamese)}, nil
}

// Label returns one label per row of components. Column order must match
// the vocabulary. Equal weights keep the lower column first.
func (l *Labeler) Label(components [][]float64, v *vocab.Vocabulary) ([]Label, error) {
	labels := make([]Label, 0, len(components))
	for k, row := range components {
		if len(row) != v.Len() {
			return nil, fmt.Errorf("label: topic %d has %d weights for %d terms: %w", k, len(row), v.Len(), internalerr.ErrInvalidInput)
		}
		idx := make([]int, len(row))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] > row[idx[b]] })

		n := min(l.opts.TopN, len(idx))
		lb := Label{Topic: k, Keywords: make([]string, n), Weights: make([]float64, n)}
		for i := 0; i < n; i++ {
			lb.Keywords[i] = v.Term(idx[i])
			lb.Weights[i] = row[idx[i]]
		}
		lb.Name = l.Name(lb.Keywords)
		labels = append(labels, lb)
	}
	return labels, nil
}

// Name joins the first NameTerms keywords, title-cased with join markers
// turned back into spaces.
func (l *Labeler) Name(keywords []string) string {
	n := min(l.opts.NameTerms, len(keywords))
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = l.title.String(strings.ReplaceAll(keywords[i], ingest.JoinMarker, " "))
	}
	return strings.Join(parts, l.opts.Separator)
}

// ByTopic indexes labels by topic id.
func ByTopic(labels []Label) map[int]Label {
	out := make(map[int]Label, len(labels))
	for _, lb := range labels {
		out[lb.Topic] = lb
	}
	return out
}
