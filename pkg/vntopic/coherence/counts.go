// Package coherence scores topics by how often their top keywords appear
// together in the corpus, using normalized pointwise mutual information.
package coherence

import "sort"

// Counter maintains document co-occurrence counts for a fixed term set.
// Terms outside the set are ignored, which keeps pair counting bounded by
// the number of keywords rather than the vocabulary.
type Counter struct {
	N     int64               // total number of documents
	Nx    map[string]int64    // document frequency per tracked term
	Nxy   map[TermPair]int64  // co-occurrence count per term pair
	track map[string]struct{} // nil tracks every term
}

// TermPair is an ordered pair of terms (T1 < T2).
type TermPair struct {
	T1, T2 string
}

// NewCounter counts only the given terms. With no terms every token is
// tracked.
func NewCounter(terms ...string) *Counter {
	c := &Counter{
		Nx:  make(map[string]int64),
		Nxy: make(map[TermPair]int64),
	}
	if len(terms) > 0 {
		c.track = make(map[string]struct{}, len(terms))
		for _, t := range terms {
			c.track[t] = struct{}{}
		}
	}
	return c
}

// AddDocument updates counts for one document. Repeated tokens count once.
func (c *Counter) AddDocument(tokens []string) {
	c.N++

	seen := make(map[string]struct{}, len(tokens))
	uniq := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if c.track != nil {
			if _, ok := c.track[t]; !ok {
				continue
			}
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)

	for i, a := range uniq {
		c.Nx[a]++
		for _, b := range uniq[i+1:] {
			c.Nxy[TermPair{T1: a, T2: b}]++
		}
	}
}

// PairCount returns the number of documents containing both terms.
func (c *Counter) PairCount(t1, t2 string) int64 {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return c.Nxy[TermPair{T1: t1, T2: t2}]
}

// TermCount returns the document frequency of t.
func (c *Counter) TermCount(t string) int64 {
	return c.Nx[t]
}
