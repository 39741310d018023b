package vocab

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

func split(docs ...string) [][]string {
	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = strings.Fields(d)
	}
	return out
}

func TestSelectorThresholds(t *testing.T) {
	docs := split(
		"tin bóng_đá cầu_thủ",
		"tin bóng_đá trận_đấu",
		"tin cổ_phiếu chứng_khoán",
		"tin cổ_phiếu ngân_hàng",
	)
	params := Params{MinDocFreq: 2, MaxDocFreqRatio: 0.75}
	sel, err := NewSelector(params, nil)
	require.NoError(t, err)

	v, report, err := sel.Fit(docs)
	require.NoError(t, err)

	// "tin" is in 4/4 > 0.75, singletons are below min_doc_freq
	assert.Equal(t, []string{"bóng_đá", "cổ_phiếu"}, v.Terms)
	assert.Equal(t, []int{2, 2}, v.DocFreq)
	assert.Equal(t, 4, v.TotalDocs)
	assert.Equal(t, 7, report.Candidates)
	assert.Equal(t, 4, report.DroppedLowDF)
	require.Len(t, report.HighDF, 1)
	assert.Equal(t, "tin", report.HighDF[0].Token)
	assert.InDelta(t, 100.0, report.HighDF[0].DFPercent, 1e-9)

	for i, term := range v.Terms {
		df := 0
		for _, d := range docs {
			for _, tok := range d {
				if tok == term {
					df++
					break
				}
			}
		}
		assert.Equal(t, v.DocFreq[i], df)
		assert.GreaterOrEqual(t, df, params.MinDocFreq, term)
		assert.LessOrEqual(t, float64(df), params.MaxDocFreqRatio*float64(len(docs)), term)
	}
}

func TestSelectorLexicographicOrder(t *testing.T) {
	docs := split("z y x", "x y z w", "w")
	sel, err := NewSelector(Params{MinDocFreq: 1, MaxDocFreqRatio: 1}, nil)
	require.NoError(t, err)

	v, _, err := sel.Fit(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "x", "y", "z"}, v.Terms)

	for i, term := range v.Terms {
		idx, ok := v.Index(term)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
	_, ok := v.Index("missing")
	assert.False(t, ok)
}

func TestSelectorMaxTermsKeepsHighestTFIDF(t *testing.T) {
	// scores: vừa 2.01, hiếm 1.53, chung 1.37, khác 0.96
	docs := split(
		"hiếm hiếm hiếm hiếm chung",
		"vừa vừa chung",
		"vừa vừa chung",
		"chung khác",
	)
	sel, err := NewSelector(Params{MinDocFreq: 1, MaxDocFreqRatio: 1, MaxTerms: 2}, nil)
	require.NoError(t, err)

	v, report, err := sel.Fit(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"hiếm", "vừa"}, v.Terms)
	assert.Equal(t, []int{1, 2}, v.DocFreq)
	assert.Equal(t, 2, report.DroppedByCap)
	assert.Equal(t, 2, report.Kept)
}

func TestSelectorEmptyVocabulary(t *testing.T) {
	sel, err := NewSelector(Params{MinDocFreq: 5, MaxDocFreqRatio: 0.9}, nil)
	require.NoError(t, err)

	_, _, err = sel.Fit(split("một hai", "ba bốn"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrEmptyVocabulary))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "min_doc_freq=5")
}

func TestSelectorEmptyCorpus(t *testing.T) {
	sel, err := NewSelector(DefaultParams(), nil)
	require.NoError(t, err)

	_, _, err = sel.Fit(nil)
	assert.ErrorIs(t, err, internalerr.ErrEmptyCorpus)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		param  string
	}{
		{"min df zero", Params{MinDocFreq: 0, MaxDocFreqRatio: 0.5}, "min_doc_freq"},
		{"ratio zero", Params{MinDocFreq: 1, MaxDocFreqRatio: 0}, "max_doc_freq_ratio"},
		{"ratio above one", Params{MinDocFreq: 1, MaxDocFreqRatio: 1.5}, "max_doc_freq_ratio"},
		{"negative cap", Params{MinDocFreq: 1, MaxDocFreqRatio: 1, MaxTerms: -1}, "max_terms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelector(tt.params, nil)
			require.Error(t, err)
			var pe *internalerr.ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.param, pe.Param)
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
		})
	}
	assert.NoError(t, DefaultParams().Validate())
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]string{"a", "a"}, []int{1, 1}, 2, DefaultParams())
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = New([]string{"a"}, nil, 2, DefaultParams())
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestCounterTFIDF(t *testing.T) {
	c := NewCounter()
	c.AddDocument([]string{"a", "a", "b"})
	c.AddDocument([]string{"b"})

	assert.Equal(t, int64(2), c.TotalDocs())
	assert.Equal(t, int64(1), c.GetTokenCount("a"))
	assert.Equal(t, int64(2), c.GetTokenCount("b"))
	assert.Equal(t, 2, c.UniqueTokens())

	assert.InDelta(t, (2.0/3.0)*IDF(2, 1), c.TFIDF("a"), 1e-12)
	assert.InDelta(t, (1.0/3.0+1.0)*IDF(2, 2), c.TFIDF("b"), 1e-12)
	assert.Zero(t, c.TFIDF("missing"))
}

func TestUnmarshalBuildsIndex(t *testing.T) {
	v, err := New([]string{"bóng_đá", "cổ_phiếu", "trận"}, []int{2, 2, 1}, 4, DefaultParams())
	require.NoError(t, err)
	blob, err := json.Marshal(v)
	require.NoError(t, err)

	var loaded Vocabulary
	require.NoError(t, json.Unmarshal(blob, &loaded))
	require.NotNil(t, loaded.index)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, term := range v.Terms {
				j, ok := loaded.Index(term)
				assert.True(t, ok)
				assert.Equal(t, i, j)
			}
			_, ok := loaded.Index("vắng")
			assert.False(t, ok)
		}()
	}
	wg.Wait()
}

func TestUnmarshalRejectsDuplicates(t *testing.T) {
	var v Vocabulary
	err := json.Unmarshal([]byte(`{"terms":["a","a"],"doc_freq":[1,1],"total_docs":1}`), &v)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}
