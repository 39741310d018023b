package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic"
	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/label"
)

func row(topic int, text string, day string) vntopic.EnrichedRow {
	doc := ingest.Document{}
	if day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		doc.Published = ingest.Some(t)
	}
	return vntopic.EnrichedRow{Document: doc, CleanText: text, TopicID: topic}
}

func sampleLabels() []label.Label {
	return []label.Label{
		{Topic: 0, Name: "Bóng Đá - Trận", Keywords: []string{"bóng_đá", "trận", "bàn"}},
		{Topic: 1, Name: "Cổ Phiếu - Sàn", Keywords: []string{"cổ_phiếu", "sàn"}},
	}
}

func sampleRows() []vntopic.EnrichedRow {
	return []vntopic.EnrichedRow{
		row(0, "bóng_đá trận bóng_đá", "2024-01-02"),
		row(0, "trận bàn", "2024-01-01"),
		row(0, "bóng_đá", ""),
		row(1, "cổ_phiếu sàn", "2024-01-02"),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows(), sampleLabels(), 2)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Undated)
	require.Len(t, s.Topics, 2)
	assert.Equal(t, 3, s.Topics[0].Count)
	assert.Equal(t, 1, s.Topics[1].Count)
	assert.InDelta(t, 0.75, s.Topics[0].Share, 1e-12)
	assert.InDelta(t, 0.25, s.Topics[1].Share, 1e-12)

	// compound words are shown with spaces, ties broken alphabetically
	assert.Equal(t, []WordCount{{"bóng đá", 3}, {"trận", 2}}, s.Topics[0].Words)

	require.Len(t, s.Timeline, 2)
	assert.Equal(t, DayCount{Day: "2024-01-01", Counts: []int{1, 0}}, s.Timeline[0])
	assert.Equal(t, DayCount{Day: "2024-01-02", Counts: []int{1, 1}}, s.Timeline[1])
	assert.Equal(t, 0, s.Largest())

	// bóng_đá and trận share a row, bàn and bóng_đá do not
	assert.Greater(t, s.Topics[0].NPMI, -1.0)
	assert.InDelta(t, 1.0, s.Topics[1].NPMI, 1e-9)
}

func TestSummarizeSkipsUnknownTopic(t *testing.T) {
	rows := append(sampleRows(), row(7, "lạ", "2024-01-03"))
	s := Summarize(rows, sampleLabels(), 0)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Topics[0].Count)
	assert.Len(t, s.Timeline, 2)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, sampleLabels(), 10)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Topics[0].Share)
	assert.Empty(t, s.Timeline)
	assert.Equal(t, 0, s.Largest())
}

func TestLargestTieLowestID(t *testing.T) {
	s := Summary{Topics: []TopicSummary{{Count: 2}, {Count: 5}, {Count: 5}}}
	assert.Equal(t, 1, s.Largest())
}

func TestProjectSmallCorpus(t *testing.T) {
	pts, err := Project([][]float64{{1, 0}, {0, 1}}, []int{0, 1}, []string{"a", "b"}, DefaultProjectOptions())
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, Point{X: 0, Topic: 0, Label: "a"}, pts[0])
	assert.Equal(t, Point{X: 1, Topic: 1, Label: "b"}, pts[1])
}

func TestProjectRejectsMismatch(t *testing.T) {
	_, err := Project([][]float64{{1, 0}}, []int{0, 1}, nil, DefaultProjectOptions())
	assert.Error(t, err)

	_, err = Project([][]float64{{1, 0}, {1}, {0, 1}}, []int{0, 0, 1}, nil, DefaultProjectOptions())
	assert.Error(t, err)
}

func TestProjectEmbeds(t *testing.T) {
	var docTopic [][]float64
	var topics []int
	for i := 0; i < 12; i++ {
		k := i % 2
		r := []float64{0.1, 0.1}
		r[k] = 0.9
		docTopic = append(docTopic, r)
		topics = append(topics, k)
	}
	opts := DefaultProjectOptions()
	opts.MaxIter = 50

	pts, err := Project(docTopic, topics, nil, opts)
	require.NoError(t, err)
	require.Len(t, pts, 12)
	for i, p := range pts {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), "point %d", i)
		assert.Equal(t, topics[i], p.Topic)
	}
}

func TestRenderHTML(t *testing.T) {
	s := Summarize(sampleRows(), sampleLabels(), 10)
	pts := []Point{{X: 0, Y: 0, Topic: 0, Label: "<b>x</b>"}, {X: 1, Y: 2, Topic: 1}}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, s, pts, "Thể thao"))
	page := buf.String()

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Thể thao</title>")
	assert.Contains(t, page, "Bóng Đá - Trận")
	assert.Contains(t, page, "75.0%")
	assert.Contains(t, page, `id="timeline"`)
	assert.Contains(t, page, `id="projection"`)
	assert.Contains(t, page, "bóng đá")
	assert.Contains(t, page, `"total":4`)
	assert.NotContains(t, page, "<b>x</b>")
}

func TestRenderHTMLWithoutDates(t *testing.T) {
	s := Summarize([]vntopic.EnrichedRow{row(0, "trận", "")}, sampleLabels(), 10)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, s, nil, "r"))
	assert.Contains(t, buf.String(), "No dated documents.")
	assert.NotContains(t, buf.String(), `id="projection"`)
}
