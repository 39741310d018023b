// Package encode turns normalized documents into a sparse document-term
// matrix over a frozen vocabulary. Tokens outside the vocabulary are ignored.
package encode

import (
	"fmt"
	"sort"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/vocab"
)

// Weighting selects the cell value.
type Weighting string

const (
	// Count stores raw occurrence counts.
	Count Weighting = "count"
	// TFIDF stores counts multiplied by the vocabulary's smoothed idf.
	TFIDF Weighting = "tfidf"
)

// Encoder maps token sequences onto vocabulary columns.
type Encoder struct {
	Vocabulary *vocab.Vocabulary `json:"vocabulary"`
	Weighting  Weighting         `json:"weighting"`
	IDF        []float64         `json:"idf,omitempty"`
}

// NewEncoder freezes a vocabulary into an encoder.
func NewEncoder(v *vocab.Vocabulary, weighting Weighting) (*Encoder, error) {
	if v == nil || v.Len() == 0 {
		return nil, fmt.Errorf("encoder: %w", internalerr.ErrEmptyVocabulary)
	}
	if weighting == "" {
		weighting = Count
	}
	e := &Encoder{Vocabulary: v, Weighting: weighting}
	switch weighting {
	case Count:
	case TFIDF:
		e.IDF = make([]float64, v.Len())
		for i, df := range v.DocFreq {
			e.IDF[i] = vocab.IDF(int64(v.TotalDocs), int64(df))
		}
	default:
		return nil, internalerr.Param("weighting", weighting, "must be count or tfidf")
	}
	return e, nil
}

// Validate checks an encoder restored from storage.
func (e *Encoder) Validate() error {
	if e.Vocabulary == nil || e.Vocabulary.Len() == 0 {
		return fmt.Errorf("encoder: %w", internalerr.ErrEmptyVocabulary)
	}
	if len(e.Vocabulary.DocFreq) != e.Vocabulary.Len() {
		return fmt.Errorf("encoder: vocabulary frequencies misaligned: %w", internalerr.ErrInvalidInput)
	}
	switch e.Weighting {
	case Count:
	case TFIDF:
		if len(e.IDF) != e.Vocabulary.Len() {
			return fmt.Errorf("encoder: idf has %d entries for %d terms: %w", len(e.IDF), e.Vocabulary.Len(), internalerr.ErrInvalidInput)
		}
	default:
		return internalerr.Param("weighting", e.Weighting, "must be count or tfidf")
	}
	return nil
}

// Transform encodes each document as one matrix row, in input order.
func (e *Encoder) Transform(docs [][]string) *Matrix {
	m := &Matrix{
		Rows:   len(docs),
		Cols:   e.Vocabulary.Len(),
		Indptr: make([]int, 1, len(docs)+1),
	}

	counts := make(map[int]int)
	cols := make([]int, 0, 16)
	for _, tokens := range docs {
		clear(counts)
		cols = cols[:0]
		for _, tok := range tokens {
			j, ok := e.Vocabulary.Index(tok)
			if !ok {
				continue
			}
			if counts[j] == 0 {
				cols = append(cols, j)
			}
			counts[j]++
		}
		sort.Ints(cols)
		for _, j := range cols {
			v := float64(counts[j])
			if e.Weighting == TFIDF {
				v *= e.IDF[j]
			}
			m.Indices = append(m.Indices, j)
			m.Data = append(m.Data, v)
		}
		m.Indptr = append(m.Indptr, len(m.Data))
	}
	return m
}
