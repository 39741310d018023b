package coherence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic/label"
)

func TestCounterTracksOnlyGivenTerms(t *testing.T) {
	c := NewCounter("bóng_đá", "cầu_thủ")
	c.AddDocument([]string{"cầu_thủ", "bóng_đá", "sân", "bóng_đá"})
	c.AddDocument([]string{"sân"})

	assert.Equal(t, int64(2), c.N)
	assert.Equal(t, int64(1), c.TermCount("bóng_đá"))
	assert.Zero(t, c.TermCount("sân"))
	assert.Equal(t, int64(1), c.PairCount("bóng_đá", "cầu_thủ"))
	assert.Equal(t, c.PairCount("cầu_thủ", "bóng_đá"), c.PairCount("bóng_đá", "cầu_thủ"))
}

func TestCounterTracksEverythingByDefault(t *testing.T) {
	c := NewCounter()
	c.AddDocument([]string{"a", "b", "c"})
	assert.Equal(t, int64(1), c.TermCount("c"))
	assert.Equal(t, int64(1), c.PairCount("c", "a"))
	assert.Len(t, c.Nxy, 3)
}

func TestPMISigns(t *testing.T) {
	calc := NewCalculator(1.0)

	assert.Greater(t, calc.PMI(8, 10, 10, 20), 0.0)
	assert.Less(t, calc.PMI(5, 50, 50, 100), 0.0)
	assert.InDelta(t, 0, calc.PMI(25, 50, 50, 100), 0.5)
	assert.Zero(t, calc.PMI(1, 1, 1, 0))
}

func TestNPMIRange(t *testing.T) {
	calc := NewCalculator(1.0)
	tests := []struct {
		name           string
		nAB, nA, nB, n int64
	}{
		{"strong", 8, 10, 10, 20},
		{"weak", 5, 50, 50, 100},
		{"rare", 1, 1, 1, 1000},
		{"everywhere", 20, 20, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := calc.NPMI(tt.nAB, tt.nA, tt.nB, tt.n)
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		})
	}
	assert.Equal(t, -1.0, calc.NPMI(0, 10, 10, 100))
	assert.Equal(t, 1.0, calc.NPMI(20, 20, 20, 20))
}

func TestNPMINearlyEverywhere(t *testing.T) {
	calc := NewCalculator(1.0)

	// b is in every document, so a tells nothing about it
	assert.InDelta(t, 0, calc.NPMI(9, 9, 10, 10), 1e-12)
	// always together but not everywhere
	assert.InDelta(t, 1, calc.NPMI(9, 9, 9, 10), 1e-12)
}

func TestScoreSeparatesCoherentTopics(t *testing.T) {
	docs := [][]string{
		{"bóng_đá", "cầu_thủ", "trận"},
		{"bóng_đá", "cầu_thủ"},
		{"cầu_thủ", "trận"},
		{"cổ_phiếu", "chứng_khoán", "sàn"},
		{"cổ_phiếu", "chứng_khoán"},
		{"chứng_khoán", "sàn"},
	}
	labels := []label.Label{
		{Topic: 0, Keywords: []string{"bóng_đá", "cầu_thủ", "trận"}},
		{Topic: 1, Keywords: []string{"bóng_đá", "cổ_phiếu", "sàn"}},
	}

	scores := Score(labels, docs, 3)
	require.Len(t, scores, 2)
	assert.Equal(t, 3, scores[0].Pairs)
	assert.Greater(t, scores[0].NPMI, scores[1].NPMI)
	assert.InDelta(t, (scores[0].NPMI+scores[1].NPMI)/2, Mean(scores), 1e-12)
}

func TestScoreTruncatesKeywords(t *testing.T) {
	labels := []label.Label{{Topic: 0, Keywords: []string{"a", "b", "c", "d"}}}
	scores := Score(labels, [][]string{{"a", "b"}}, 2)
	assert.Equal(t, 1, scores[0].Pairs)

	scores = Score(labels, [][]string{{"a", "b"}}, 0)
	assert.Equal(t, 6, scores[0].Pairs)
}

func TestScoreEmpty(t *testing.T) {
	scores := Score([]label.Label{{Topic: 3}}, nil, 5)
	assert.Equal(t, []Topic{{Topic: 3}}, scores)
	assert.Zero(t, Mean(nil))
}
