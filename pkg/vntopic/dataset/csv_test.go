package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

const sample = "date,title,sapo,content_text,link,source\n" +
	"2024-01-21,Việt Nam thắng,Đội tuyển thắng 2-0,Việt Nam thắng Đội tuyển thắng 2-0,https://vnexpress.net/a,vne\n" +
	"21/01/2024,VN-Index giảm,,VN-Index giảm mạnh,https://vnexpress.net/b,vne\n" +
	",Không ngày,,,https://vnexpress.net/c,vne\n"

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(string(BOM)+sample), DefaultColumns())
	require.NoError(t, err)
	require.Len(t, tbl.Docs, 3)
	assert.Equal(t, "date", tbl.Header[0], "BOM is stripped from the first header")

	d0 := tbl.Docs[0]
	assert.Equal(t, 0, d0.Row)
	assert.Equal(t, "Việt Nam thắng", d0.Title.OrElse(""))
	pub, ok := d0.Published.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), pub)
	assert.Equal(t, map[string]string{"source": "vne"}, d0.Extra)

	d1 := tbl.Docs[1]
	assert.False(t, d1.Description.Present())
	pub, _ = d1.Published.Get()
	assert.Equal(t, 21, pub.Day())

	d2 := tbl.Docs[2]
	assert.False(t, d2.Text.Present(), "empty text is missing, not an error")
	assert.False(t, d2.Published.Present())
}

func TestReadCSVMissingTextColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("title,link\nA,B\n"), DefaultColumns())
	assert.ErrorIs(t, err, internalerr.ErrMissingColumn)
	assert.ErrorContains(t, err, "content_text")
}

func TestReadCSVBadDate(t *testing.T) {
	in := "date,content_text\n2024-01-21,a\nhôm qua,b\n"
	_, err := ReadCSV(strings.NewReader(in), DefaultColumns())
	require.ErrorIs(t, err, internalerr.ErrInvalidInput)
	assert.ErrorContains(t, err, "row 2")
	assert.ErrorContains(t, err, "hôm qua")
}

func TestReadCSVRaggedRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("content_text,link\na\n"), DefaultColumns())
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), DefaultColumns())
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sample), DefaultColumns())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteCSV(&buf, tbl, []Enrichment{
		{Row: 0, CleanText: "việt_nam thắng", TopicID: 1, TopicName: "Việt Nam - Thắng", Keywords: []string{"việt_nam", "thắng"}},
		{Row: 1, CleanText: "vn index giảm", TopicID: 0, TopicName: "Giảm", Keywords: []string{"giảm"}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), BOM))

	out, err := ReadCSV(bytes.NewReader(buf.Bytes()), DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "title", "sapo", "content_text", "link", "source",
		ColCleanText, ColTopicID, ColTopicName, ColTopicKeywords}, out.Header)
	require.Len(t, out.Records, 2)
	assert.Equal(t, tbl.Records[0], out.Records[0][:6], "original cells unchanged")
	assert.Equal(t, []string{"việt_nam thắng", "1", "Việt Nam - Thắng", "việt_nam, thắng"}, out.Records[0][6:])
}

func TestWriteCSVRejectsUnknownRow(t *testing.T) {
	tbl := &Table{Header: []string{"content_text"}, Records: [][]string{{"a"}}}
	err := WriteCSV(&bytes.Buffer{}, tbl, []Enrichment{{Row: 3}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestCSVFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := TableFromDocs([]ingest.Document{{
		Title: ingest.Some("Tiêu đề"), Text: ingest.Some("Nội dung"), Link: ingest.Some("https://vnexpress.net/x"),
		Published: ingest.Some(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)),
	}})
	require.NoError(t, WriteCSVFile(path, tbl, []Enrichment{{Row: 0, CleanText: "nội_dung"}}))

	got, err := ReadCSVFile(path, DefaultColumns())
	require.NoError(t, err)
	require.Len(t, got.Docs, 1)
	assert.Equal(t, "Nội dung", got.Docs[0].Text.OrElse(""))
	assert.Equal(t, "2024-02-03", got.Records[0][0])

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultColumns())
	assert.Error(t, err)
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2024-01-05", "2024-01-05T10:00:00+07:00", "2024-01-05 10:00:00", "05/01/2024", "5/1/2024"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, 5, d.Day(), s)
		assert.Equal(t, time.January, d.Month(), s)
	}
}
