package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer reduces raw text to its normalized token sequence: NFC,
// lowercase, punctuation removal, compound segmentation, stopword and
// short-token filtering. It holds no per-call state and is safe for
// concurrent use once configured.
type Tokenizer struct {
	stopwords map[string]struct{}
	segmenter *Segmenter
	strict    bool // drop tokens of one rune or less
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithSegmenter sets the compound-word segmenter. A nil segmenter leaves
// syllables unjoined.
func WithSegmenter(s *Segmenter) TokenizerOption {
	return func(t *Tokenizer) { t.segmenter = s }
}

// WithStrict toggles dropping of single-rune tokens.
func WithStrict(strict bool) TokenizerOption {
	return func(t *Tokenizer) { t.strict = strict }
}

// NewTokenizer creates a tokenizer with the given stopword list. By default
// it segments with the embedded Vietnamese dictionary and runs in strict mode.
func NewTokenizer(stopwords []string, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		stopwords: make(map[string]struct{}, len(stopwords)),
		segmenter: DefaultSegmenter(),
		strict:    true,
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, w := range stopwords {
		t.AddStopword(w)
	}
	return t
}

// Tokenize splits text into normalized tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	syllables := strings.Fields(clean(text))
	if len(syllables) == 0 {
		return nil
	}

	words := syllables
	if t.segmenter != nil {
		words = t.segmenter.Segment(syllables)
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if t.keep(w) {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// Normalize returns the space-joined tokens of a text value. Anything that is
// not a string normalizes to "".
func (t *Tokenizer) Normalize(v any) string {
	var text string
	switch s := v.(type) {
	case string:
		text = s
	case *string:
		if s == nil {
			return ""
		}
		text = *s
	case Field[string]:
		return t.NormalizeField(s)
	default:
		return ""
	}
	return strings.Join(t.Tokenize(text), " ")
}

// NormalizeField normalizes an optional text; a missing value yields "".
func (t *Tokenizer) NormalizeField(f Field[string]) string {
	text, ok := f.Get()
	if !ok {
		return ""
	}
	return strings.Join(t.Tokenize(text), " ")
}

func (t *Tokenizer) keep(word string) bool {
	if word == "" {
		return false
	}
	if t.strict && utf8.RuneCountInString(word) <= 1 {
		return false
	}
	return !t.IsStopword(word)
}

// clean applies NFC, lowercases, and removes every rune that is not a
// letter, digit, combining mark or whitespace. Whitespace becomes a plain
// space.
func clean(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// IsStopword reports whether a segmented token is a stopword.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list. Multi-syllable stopwords are
// stored in segmented form and registered with the segmenter so the phrase
// is joined into one token before the stopword check.
func (t *Tokenizer) AddStopword(word string) {
	key := stopKey(word)
	if key == "" {
		return
	}
	t.stopwords[key] = struct{}{}
	if t.segmenter != nil && strings.Contains(key, JoinMarker) {
		t.segmenter.Add(DictEntry{Canonical: phraseKey(word)})
	}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, stopKey(word))
}

// Stopwords returns the number of configured stopwords.
func (t *Tokenizer) Stopwords() int {
	return len(t.stopwords)
}

func stopKey(word string) string {
	return strings.ReplaceAll(phraseKey(word), " ", JoinMarker)
}
