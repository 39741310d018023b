package ingest

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// JoinMarker connects the syllables of a compound word into one token.
const JoinMarker = "_"

//go:embed compounds_vi.txt
var defaultCompounds string

// DictEntry is a compound word and the spellings that map to it.
type DictEntry struct {
	Canonical string
	Variants  []string
}

// Segmenter joins runs of syllables that form dictionary compounds
// ("bóng đá" -> "bóng_đá") using greedy longest match.
type Segmenter struct {
	dict   map[string]string // syllable phrase -> joined token
	maxLen int
}

// NewSegmenter creates a segmenter over the given dictionary.
func NewSegmenter(entries []DictEntry) *Segmenter {
	s := &Segmenter{dict: make(map[string]string), maxLen: 1}
	s.Add(entries...)
	return s
}

// DefaultSegmenter returns a segmenter loaded with the embedded Vietnamese
// compound dictionary.
func DefaultSegmenter() *Segmenter {
	entries, err := ParseDict(strings.NewReader(defaultCompounds))
	if err != nil {
		panic(fmt.Sprintf("ingest: embedded dictionary: %v", err))
	}
	return NewSegmenter(entries)
}

// Add registers more dictionary entries.
func (s *Segmenter) Add(entries ...DictEntry) {
	for _, e := range entries {
		canonical := phraseKey(e.Canonical)
		if canonical == "" {
			continue
		}
		joined := strings.ReplaceAll(canonical, " ", JoinMarker)
		s.put(canonical, joined)
		for _, v := range e.Variants {
			if key := phraseKey(v); key != "" {
				s.put(key, joined)
			}
		}
	}
}

func (s *Segmenter) put(key, joined string) {
	s.dict[key] = joined
	if l := phraseLen(key); l > s.maxLen {
		s.maxLen = l
	}
}

// Len returns the number of dictionary phrases.
func (s *Segmenter) Len() int {
	return len(s.dict)
}

// Segment applies greedy longest match to already lowercased syllables.
func (s *Segmenter) Segment(syllables []string) []string {
	if s == nil || len(s.dict) == 0 {
		return syllables
	}
	result := make([]string, 0, len(syllables))
	i := 0

	for i < len(syllables) {
		matched := ""
		matchLen := 1

		maxPhrase := s.maxLen
		if remaining := len(syllables) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			if joined, ok := s.dict[strings.Join(syllables[i:i+n], " ")]; ok {
				matched = joined
				matchLen = n
				break
			}
		}

		if matched != "" {
			result = append(result, matched)
			i += matchLen
			continue
		}
		// single-syllable spelling variants
		if joined, ok := s.dict[syllables[i]]; ok {
			result = append(result, joined)
		} else {
			result = append(result, syllables[i])
		}
		i++
	}

	return result
}

// ParseDict reads a compound dictionary.
// Format: one entry per line, canonical|variant1|variant2; '#' starts a comment.
func ParseDict(r io.Reader) ([]DictEntry, error) {
	var entries []DictEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			continue
		}
		entries = append(entries, DictEntry{Canonical: parts[0], Variants: parts[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return entries, nil
}

// phraseKey lowercases, NFC-normalizes and collapses whitespace and join
// markers so "Bóng_Đá" and "bóng  đá" share a key.
func phraseKey(phrase string) string {
	phrase = strings.ReplaceAll(norm.NFC.String(strings.ToLower(phrase)), JoinMarker, " ")
	return strings.Join(strings.Fields(phrase), " ")
}

func phraseLen(phrase string) int {
	if phrase == "" {
		return 1
	}
	return len(strings.Fields(phrase))
}
