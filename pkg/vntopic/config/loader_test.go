package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := NewLoader(Default().Normalizer).Load()
	require.NoError(t, err)
	require.NotNil(t, comp.Tokenizer)
	assert.Positive(t, comp.Segmenter.Len())
	assert.Equal(t, []string{"đội_tuyển", "thắng"}, comp.Tokenizer.Tokenize("Đội tuyển và thắng"))
}

func TestLoaderFiles(t *testing.T) {
	stop := writeFile(t, "stoplist.yaml", "terms:\n  - thắng\n  - bởi vì\n")
	dict := writeFile(t, "compounds.txt", "# extra\nlãi suất|ls\n")

	comp, err := (&Loader{StoplistPath: stop, DictPath: dict, Strict: true}).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"đội_tuyển"}, comp.Tokenizer.Tokenize("Đội tuyển thắng bởi vì"))
	assert.Equal(t, []string{"lãi_suất", "giảm"}, comp.Tokenizer.Tokenize("lãi suất giảm"))
	assert.Contains(t, comp.Stopwords, "và", "built-in list is kept")
}

func TestLoaderStoplistPhrases(t *testing.T) {
	stop := writeFile(t, "stoplist.yaml", "terms: [\"tuy vậy\", \"vì vậy\"]\n")

	comp, err := (&Loader{StoplistPath: stop, Strict: true}).Load()
	require.NoError(t, err)

	assert.Equal(t, "đội_bóng vẫn thắng cổ_phiếu tăng",
		comp.Tokenizer.Normalize("Tuy vậy đội bóng vẫn thắng, vì vậy cổ phiếu tăng"))
}

func TestLoaderReplaceStopwords(t *testing.T) {
	stop := writeFile(t, "stoplist.yaml", "terms: [thắng]\n")
	comp, err := (&Loader{StoplistPath: stop, ReplaceStopwords: true, Strict: true}).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"thắng"}, comp.Stopwords)
	assert.Equal(t, []string{"và", "đội_tuyển"}, comp.Tokenizer.Tokenize("và đội tuyển thắng"))
}

func TestLoaderMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := (&Loader{StoplistPath: filepath.Join(dir, "x.yaml")}).Load()
	assert.ErrorContains(t, err, "load stoplist")

	_, err = (&Loader{DictPath: filepath.Join(dir, "x.txt")}).Load()
	assert.ErrorContains(t, err, "load dictionary")
}

func TestLoaderMalformedStoplist(t *testing.T) {
	bad := writeFile(t, "stoplist.yaml", "terms: [unclosed")
	_, err := (&Loader{StoplistPath: bad}).Load()
	assert.Error(t, err)
}
