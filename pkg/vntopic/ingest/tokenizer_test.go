package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestTokenizerCaseInsensitive(t *testing.T) {
	tok := NewTokenizer(nil)

	upper := tok.Tokenize("Hà Nội")
	lower := tok.Tokenize("hà nội")

	assert.Equal(t, lower, upper)
	assert.Equal(t, []string{"hà_nội"}, lower)
}

func TestTokenizerStripsPunctuation(t *testing.T) {
	tok := NewTokenizer(nil)

	out := tok.Normalize("xin chào!!!")
	assert.NotContains(t, out, "!")
	assert.Equal(t, "xin chào", out)

	out = tok.Normalize(`"Giá vàng" (hôm nay) tăng 2%, phải không?`)
	for _, r := range `"(),%?` {
		assert.NotContains(t, out, string(r))
	}
	assert.Equal(t, "giá_vàng hôm nay tăng phải không", out)
}

func TestTokenizerRemovesInWordPunctuation(t *testing.T) {
	tok := NewTokenizer(nil, WithSegmenter(nil))

	assert.Equal(t, []string{"helloworldcom", "testtag", "123"}, tok.Tokenize("hello@world.com test#tag 123"))
}

func TestTokenizerDecomposedDiacritics(t *testing.T) {
	tok := NewTokenizer(nil)

	composed := tok.Tokenize("Cầu thủ ghi bàn thắng")
	decomposed := tok.Tokenize(norm.NFD.String("Cầu thủ ghi bàn thắng"))

	assert.Equal(t, composed, decomposed)
	assert.Equal(t, []string{"cầu_thủ", "ghi", "bàn_thắng"}, composed)
}

func TestTokenizerStopwords(t *testing.T) {
	tok := NewTokenizer([]string{"của", "Bởi vì"})

	assert.Equal(t, []string{"giá", "vàng"}, tok.Tokenize("giá của vàng"))
	assert.Equal(t, []string{"trời", "mưa"}, tok.Tokenize("Bởi vì trời mưa"))
	assert.True(t, tok.IsStopword("bởi_vì"))
}

func TestPhraseStopwordOutsideDictionary(t *testing.T) {
	tok := NewTokenizer([]string{"tuy vậy", "vì vậy"}, WithSegmenter(NewSegmenter(nil)))

	assert.Equal(t, []string{"đội", "vẫn", "thắng", "giá", "tăng"},
		tok.Tokenize("Tuy vậy đội vẫn thắng, vì vậy giá tăng"))
	assert.True(t, tok.IsStopword("tuy_vậy"))
}

func TestAddRemoveStopword(t *testing.T) {
	tok := NewTokenizer([]string{"và"})

	assert.Equal(t, []string{"mèo", "chó"}, tok.Tokenize("mèo và chó"))

	tok.RemoveStopword("và")
	assert.Equal(t, []string{"mèo", "và", "chó"}, tok.Tokenize("mèo và chó"))

	tok.AddStopword("VÀ")
	assert.Equal(t, []string{"mèo", "chó"}, tok.Tokenize("mèo và chó"))
}

func TestTokenizerStrictMode(t *testing.T) {
	strict := NewTokenizer(nil, WithSegmenter(nil))
	loose := NewTokenizer(nil, WithSegmenter(nil), WithStrict(false))

	assert.Equal(t, []string{"cá", "lớn"}, strict.Tokenize("cá a lớn 5"))
	assert.Equal(t, []string{"cá", "a", "lớn", "5"}, loose.Tokenize("cá a lớn 5"))
}

func TestTokenizerEmptyResults(t *testing.T) {
	tok := NewTokenizer([]string{"là", "của"})

	tests := []struct {
		name  string
		input any
	}{
		{"empty string", ""},
		{"only punctuation", "!!! ... ???"},
		{"only stopwords", "là của là"},
		{"integer", 42},
		{"nil", nil},
		{"float", 3.14},
		{"nil pointer", (*string)(nil)},
		{"missing field", None[string]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", tok.Normalize(tt.input))
		})
	}
}

func TestTokenizerNormalizeVariants(t *testing.T) {
	tok := NewTokenizer(nil)
	s := "Thị trường chứng khoán"

	assert.Equal(t, "thị_trường chứng_khoán", tok.Normalize(s))
	assert.Equal(t, "thị_trường chứng_khoán", tok.Normalize(&s))
	assert.Equal(t, "thị_trường chứng_khoán", tok.NormalizeField(Some(s)))
}

func TestTokenizerSingleSpacedOutput(t *testing.T) {
	tok := NewTokenizer(nil)

	out := tok.Normalize("  nhiều \t\n khoảng   trắng  ")
	assert.Equal(t, "nhiều khoảng trắng", out)
	assert.False(t, strings.Contains(out, "  "))
}

func TestDefaultStopwordCount(t *testing.T) {
	tok := NewTokenizer([]string{"a", "b", "a"})
	require.Equal(t, 2, tok.Stopwords())
}
