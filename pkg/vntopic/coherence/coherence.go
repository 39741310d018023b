package coherence

import (
	"math"

	"github.com/cognicore/vntopic/pkg/vntopic/label"
)

// Calculator computes PMI-based association between terms.
type Calculator struct {
	epsilon float64 // smoothing constant
}

// NewCalculator creates a calculator with the given smoothing constant.
// Non-positive values fall back to 1.
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	return &Calculator{epsilon: epsilon}
}

// PMI calculates the pointwise mutual information between two terms
//
// PMI(a,b) = log((N_ab + ε) * N / ((N_a + ε)(N_b + ε)))
func (c *Calculator) PMI(nAB, nA, nB, n int64) float64 {
	if n == 0 {
		return 0
	}
	num := (float64(nAB) + c.epsilon) * float64(n)
	den := (float64(nA) + c.epsilon) * (float64(nB) + c.epsilon)
	return math.Log(num / den)
}

// NPMI is PMI normalized by -log P(a,b), computed from raw counts and
// clamped to [-1, 1]. Pairs that never co-occur score -1 and pairs present
// in every document score 1. Smoothing only applies to PMI.
func (c *Calculator) NPMI(nAB, nA, nB, n int64) float64 {
	switch {
	case n == 0 || nA == 0 || nB == 0:
		return 0
	case nAB == 0:
		return -1
	case nAB >= n:
		return 1
	}
	pmi := math.Log(float64(nAB) * float64(n) / (float64(nA) * float64(nB)))
	v := pmi / -math.Log(float64(nAB)/float64(n))
	return math.Max(-1, math.Min(1, v))
}

// Topic is the coherence of one topic.
type Topic struct {
	Topic int     `json:"topic"`
	NPMI  float64 `json:"npmi"` // mean over keyword pairs, in [-1, 1]
	Pairs int     `json:"pairs"`
}

// Score computes the mean NPMI over pairs of the top n keywords of each
// label, counted over docs. n <= 0 uses every keyword of the label.
func Score(labels []label.Label, docs [][]string, n int) []Topic {
	top := make([][]string, len(labels))
	var terms []string
	for i, lb := range labels {
		kw := lb.Keywords
		if n > 0 && len(kw) > n {
			kw = kw[:n]
		}
		top[i] = kw
		terms = append(terms, kw...)
	}

	out := make([]Topic, len(labels))
	if len(terms) == 0 {
		for i, lb := range labels {
			out[i].Topic = lb.Topic
		}
		return out
	}

	counter := NewCounter(terms...)
	for _, d := range docs {
		counter.AddDocument(d)
	}
	calc := NewCalculator(1.0)

	for i, lb := range labels {
		out[i].Topic = lb.Topic
		var sum float64
		kw := top[i]
		for a := 0; a < len(kw); a++ {
			for b := a + 1; b < len(kw); b++ {
				sum += calc.NPMI(counter.PairCount(kw[a], kw[b]), counter.TermCount(kw[a]), counter.TermCount(kw[b]), counter.N)
				out[i].Pairs++
			}
		}
		if out[i].Pairs > 0 {
			out[i].NPMI = sum / float64(out[i].Pairs)
		}
	}
	return out
}

// Mean averages the per-topic scores.
func Mean(topics []Topic) float64 {
	if len(topics) == 0 {
		return 0
	}
	var sum float64
	for _, t := range topics {
		sum += t.NPMI
	}
	return sum / float64(len(topics))
}
