// Package vocab selects the frozen vocabulary used to encode documents.
//
// Terms are kept when min_doc_freq <= df <= max_doc_freq_ratio * N. If more
// than max_terms survive, the highest corpus tf-idf scores win. The final
// order is lexicographic so column indices are reproducible on identical
// input.
package vocab

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/stoplist"
)

// Params are the selection thresholds.
type Params struct {
	MinDocFreq      int     `yaml:"min_doc_freq" json:"min_doc_freq"`
	MaxDocFreqRatio float64 `yaml:"max_doc_freq_ratio" json:"max_doc_freq_ratio"`
	MaxTerms        int     `yaml:"max_terms" json:"max_terms"` // 0 means unbounded
}

// DefaultParams returns min_df=5, max_df=0.9, max_features=1500.
func DefaultParams() Params {
	return Params{MinDocFreq: 5, MaxDocFreqRatio: 0.9, MaxTerms: 1500}
}

// Validate checks each threshold and names the one that is wrong.
func (p Params) Validate() error {
	if p.MinDocFreq < 1 {
		return internalerr.Param("min_doc_freq", p.MinDocFreq, "must be >= 1")
	}
	if math.IsNaN(p.MaxDocFreqRatio) || p.MaxDocFreqRatio <= 0 || p.MaxDocFreqRatio > 1 {
		return internalerr.Param("max_doc_freq_ratio", p.MaxDocFreqRatio, "must be in (0, 1]")
	}
	if p.MaxTerms < 0 {
		return internalerr.Param("max_terms", p.MaxTerms, "must be >= 0 (0 = unbounded)")
	}
	return nil
}

// Vocabulary is an ordered, deduplicated term list.
type Vocabulary struct {
	Terms     []string `json:"terms"`
	DocFreq   []int    `json:"doc_freq"`
	TotalDocs int      `json:"total_docs"`
	Params    Params   `json:"params"`

	index map[string]int
}

// New builds a vocabulary from already selected terms. Terms must be unique.
func New(terms []string, docFreq []int, totalDocs int, params Params) (*Vocabulary, error) {
	if len(docFreq) != len(terms) {
		return nil, fmt.Errorf("vocabulary: %d terms but %d document frequencies: %w",
			len(terms), len(docFreq), internalerr.ErrInvalidInput)
	}
	v := &Vocabulary{
		Terms:     terms,
		DocFreq:   docFreq,
		TotalDocs: totalDocs,
		Params:    params,
	}
	if err := v.reindex(); err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalJSON decodes a stored vocabulary and builds its term index, so
// a loaded vocabulary is read-only and safe for concurrent encoding.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	type plain Vocabulary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Vocabulary(p)
	return v.reindex()
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.Terms)
}

// Index returns the column of a term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.Terms[i]
}

func (v *Vocabulary) reindex() error {
	v.index = make(map[string]int, len(v.Terms))
	for i, t := range v.Terms {
		if _, dup := v.index[t]; dup {
			return fmt.Errorf("vocabulary: duplicate term %q: %w", t, internalerr.ErrInvalidInput)
		}
		v.index[t] = i
	}
	return nil
}

// Report describes what selection removed.
type Report struct {
	Candidates   int              // distinct terms in the corpus
	Kept         int              // terms in the vocabulary
	DroppedLowDF int              // below min_doc_freq
	HighDF       []stoplist.Stats // above max_doc_freq_ratio, stopword candidates
	DroppedByCap int              // passed thresholds but fell outside max_terms
}

// Selector learns a Vocabulary from a normalized corpus.
type Selector struct {
	params Params
	logger *slog.Logger
}

// NewSelector validates params and returns a selector.
func NewSelector(params Params, logger *slog.Logger) (*Selector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{params: params, logger: logger}, nil
}

// Fit selects the vocabulary from tokenized documents.
func (s *Selector) Fit(docs [][]string) (*Vocabulary, Report, error) {
	if len(docs) == 0 {
		return nil, Report{}, fmt.Errorf("vocabulary selection: %w", internalerr.ErrEmptyCorpus)
	}

	counter := NewCounter()
	for _, d := range docs {
		counter.AddDocument(d)
	}
	n := counter.TotalDocs()
	maxDF := s.params.MaxDocFreqRatio * float64(n)

	report := Report{Candidates: counter.UniqueTokens()}
	var survivors []string
	for term, df := range counter.Nx {
		switch {
		case df < int64(s.params.MinDocFreq):
			report.DroppedLowDF++
		case float64(df) > maxDF:
			report.HighDF = append(report.HighDF, stoplist.Stats{
				Token:     term,
				DF:        df,
				DFPercent: 100 * float64(df) / float64(n),
			})
		default:
			survivors = append(survivors, term)
		}
	}
	sort.Strings(survivors)
	sort.Slice(report.HighDF, func(i, j int) bool { return report.HighDF[i].Token < report.HighDF[j].Token })

	if len(survivors) == 0 {
		return nil, report, fmt.Errorf("%w (%w): no term satisfies min_doc_freq=%d <= df <= max_doc_freq_ratio=%g x %d documents",
			internalerr.ErrEmptyVocabulary, internalerr.ErrInvalidConfig,
			s.params.MinDocFreq, s.params.MaxDocFreqRatio, n)
	}

	if s.params.MaxTerms > 0 && len(survivors) > s.params.MaxTerms {
		scores := make(map[string]float64, len(survivors))
		for _, t := range survivors {
			scores[t] = counter.TFIDF(t)
		}
		// survivors is sorted, so the stable sort breaks score ties lexicographically
		sort.SliceStable(survivors, func(i, j int) bool {
			return scores[survivors[i]] > scores[survivors[j]]
		})
		report.DroppedByCap = len(survivors) - s.params.MaxTerms
		survivors = survivors[:s.params.MaxTerms]
		sort.Strings(survivors)
	}

	docFreq := make([]int, len(survivors))
	for i, t := range survivors {
		docFreq[i] = int(counter.Nx[t])
	}
	v, err := New(survivors, docFreq, int(n), s.params)
	if err != nil {
		return nil, report, err
	}
	report.Kept = v.Len()

	s.logger.Info("vocabulary selected",
		"documents", n,
		"candidates", report.Candidates,
		"kept", report.Kept,
		"dropped_low_df", report.DroppedLowDF,
		"dropped_high_df", len(report.HighDF),
		"dropped_by_cap", report.DroppedByCap)
	return v, report, nil
}

// IDF is the smoothed inverse document frequency ln((1+n)/(1+df)) + 1.
func IDF(n, df int64) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}
