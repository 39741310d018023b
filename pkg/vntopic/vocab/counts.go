package vocab

// Counter maintains document frequencies and per-document term counts.
type Counter struct {
	N    int64            // total number of documents
	Nx   map[string]int64 // document frequency per term
	docs []docCounts
}

type docCounts struct {
	counts map[string]int
	length int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		Nx: make(map[string]int64),
	}
}

// AddDocument updates counts for one document's tokens.
func (c *Counter) AddDocument(tokens []string) {
	c.N++

	counts := make(map[string]int, len(tokens))
	length := 0
	for _, t := range tokens {
		if t == "" {
			continue
		}
		counts[t]++
		length++
	}
	for t := range counts {
		c.Nx[t]++
	}
	c.docs = append(c.docs, docCounts{counts: counts, length: length})
}

// GetTokenCount returns the document frequency for a term.
func (c *Counter) GetTokenCount(t string) int64 {
	return c.Nx[t]
}

// TotalDocs returns the total number of documents processed
func (c *Counter) TotalDocs() int64 {
	return c.N
}

// UniqueTokens returns the number of distinct terms.
func (c *Counter) UniqueTokens() int {
	return len(c.Nx)
}

// TFIDF sums length-normalized term frequency times smoothed idf over every
// document: Σ_d (count/len) * (ln((1+N)/(1+df)) + 1).
func (c *Counter) TFIDF(term string) float64 {
	df := c.Nx[term]
	if df == 0 {
		return 0
	}
	idf := IDF(c.N, df)
	var tf float64
	for _, d := range c.docs {
		if n := d.counts[term]; n > 0 && d.length > 0 {
			tf += float64(n) / float64(d.length)
		}
	}
	return tf * idf
}
