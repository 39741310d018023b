package config

import (
	"fmt"
	"os"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/stoplist"
)

// Loader loads the stoplist and dictionary files and constructs the tokenizer.
type Loader struct {
	StoplistPath     string
	DictPath         string
	ReplaceStopwords bool
	Strict           bool
}

// NewLoader takes its paths from the normalizer section.
func NewLoader(n Normalizer) *Loader {
	return &Loader{
		StoplistPath:     n.StoplistPath,
		DictPath:         n.DictPath,
		ReplaceStopwords: n.ReplaceStopwords,
		Strict:           n.Strict,
	}
}

// Components holds all loaded configuration components
type Components struct {
	Tokenizer *ingest.Tokenizer
	Segmenter *ingest.Segmenter
	Stopwords []string
}

// Load reads all configuration files and returns initialized components.
// Without files the built-in Vietnamese stopwords and compounds are used.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	stops := append([]string(nil), stoplist.Vietnamese...)
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		if l.ReplaceStopwords {
			stops = stops[:0]
		}
		stops = append(stops, sl.Terms...)
	}
	comp.Stopwords = stops

	comp.Segmenter = ingest.DefaultSegmenter()
	if l.DictPath != "" {
		f, err := os.Open(l.DictPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		defer f.Close()
		entries, err := ingest.ParseDict(f)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Segmenter.Add(entries...)
	}

	comp.Tokenizer = ingest.NewTokenizer(stops,
		ingest.WithSegmenter(comp.Segmenter),
		ingest.WithStrict(l.Strict),
	)
	return comp, nil
}
