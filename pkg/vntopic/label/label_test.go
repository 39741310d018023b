package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/vocab"
)

func vocabulary(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New(
		[]string{"bóng_đá", "cầu_thủ", "cổ_phiếu", "hà_nội", "sân"},
		[]int{1, 1, 1, 1, 1}, 2, vocab.DefaultParams())
	require.NoError(t, err)
	return v
}

func TestLabelTopTermsAndName(t *testing.T) {
	l, err := New(DefaultOptions())
	require.NoError(t, err)

	labels, err := l.Label([][]float64{
		{5, 3, 0.1, 1, 4},
		{0.1, 0.2, 9, 2, 0.3},
	}, vocabulary(t))
	require.NoError(t, err)
	require.Len(t, labels, 2)

	assert.Equal(t, []string{"bóng_đá", "sân", "cầu_thủ", "hà_nội", "cổ_phiếu"}, labels[0].Keywords)
	assert.Equal(t, []float64{5, 4, 3, 1, 0.1}, labels[0].Weights)
	assert.Equal(t, "Bóng Đá - Sân - Cầu Thủ", labels[0].Name)
	assert.Equal(t, "Cổ Phiếu - Hà Nội - Sân", labels[1].Name)
	assert.Equal(t, 1, labels[1].Topic)
	assert.Equal(t, "cổ_phiếu, hà_nội, sân, cầu_thủ, bóng_đá", labels[1].KeywordString())
}

func TestLabelTiesKeepColumnOrder(t *testing.T) {
	l, err := New(Options{TopN: 3, NameTerms: 2, Separator: " | "})
	require.NoError(t, err)

	labels, err := l.Label([][]float64{{1, 1, 1, 1, 2}}, vocabulary(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"sân", "bóng_đá", "cầu_thủ"}, labels[0].Keywords)
	assert.Equal(t, "Sân | Bóng Đá", labels[0].Name)
}

func TestLabelRejectsMismatchedWidth(t *testing.T) {
	l, err := New(DefaultOptions())
	require.NoError(t, err)
	_, err = l.Label([][]float64{{1, 2}}, vocabulary(t))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestOptionsValidate(t *testing.T) {
	_, err := New(Options{TopN: 0, NameTerms: 3})
	var perr *internalerr.ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "top_n", perr.Param)
}
