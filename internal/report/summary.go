// Package report turns pipeline output into topic statistics, a 2D
// projection of documents and a self-contained HTML report.
package report

import (
	"sort"
	"strings"

	"github.com/cognicore/vntopic/pkg/vntopic"
	"github.com/cognicore/vntopic/pkg/vntopic/coherence"
	"github.com/cognicore/vntopic/pkg/vntopic/ingest"
	"github.com/cognicore/vntopic/pkg/vntopic/label"
)

// WordCount is one word-cloud entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TopicSummary describes one topic.
type TopicSummary struct {
	Topic    int         `json:"topic"`
	Name     string      `json:"name"`
	Count    int         `json:"count"`
	Share    float64     `json:"share"`
	Keywords []string    `json:"keywords"`
	Weights  []float64   `json:"weights"`
	Words    []WordCount `json:"words"`
	NPMI     float64     `json:"npmi"`
}

// DayCount holds per-topic document counts for one day.
type DayCount struct {
	Day    string `json:"day"` // 2006-01-02
	Counts []int  `json:"counts"`
}

// Summary is everything the charts need.
type Summary struct {
	Total    int            `json:"total"`
	Undated  int            `json:"undated"`
	Topics   []TopicSummary `json:"topics"`
	Timeline []DayCount     `json:"timeline"`
}

// Summarize counts documents per topic and per day and scores each topic's
// keyword coherence over the rows. Rows without a date are left out of the
// timeline. cloudWords bounds the word list per topic.
func Summarize(rows []vntopic.EnrichedRow, labels []label.Label, cloudWords int) Summary {
	s := Summary{Total: len(rows), Topics: make([]TopicSummary, len(labels))}
	for i, lb := range labels {
		s.Topics[i] = TopicSummary{Topic: lb.Topic, Name: lb.Name, Keywords: lb.Keywords, Weights: lb.Weights}
	}
	k := len(labels)

	words := make([]map[string]int, k)
	days := map[string][]int{}
	docs := make([][]string, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, strings.Fields(r.CleanText))
		if r.TopicID < 0 || r.TopicID >= k {
			continue
		}
		s.Topics[r.TopicID].Count++
		if words[r.TopicID] == nil {
			words[r.TopicID] = map[string]int{}
		}
		for _, w := range docs[len(docs)-1] {
			words[r.TopicID][strings.ReplaceAll(w, ingest.JoinMarker, " ")]++
		}

		t, ok := r.Document.Published.Get()
		if !ok {
			s.Undated++
			continue
		}
		day := t.Format("2006-01-02")
		if days[day] == nil {
			days[day] = make([]int, k)
		}
		days[day][r.TopicID]++
	}

	scores := coherence.Score(labels, docs, 0)
	for i := range s.Topics {
		s.Topics[i].NPMI = scores[i].NPMI
		if s.Total > 0 {
			s.Topics[i].Share = float64(s.Topics[i].Count) / float64(s.Total)
		}
		s.Topics[i].Words = topWords(words[i], cloudWords)
	}
	for day, counts := range days {
		s.Timeline = append(s.Timeline, DayCount{Day: day, Counts: counts})
	}
	sort.Slice(s.Timeline, func(i, j int) bool { return s.Timeline[i].Day < s.Timeline[j].Day })
	return s
}

// Largest returns the topic with the most documents, lowest id on ties.
func (s Summary) Largest() int {
	best := 0
	for i, t := range s.Topics {
		if t.Count > s.Topics[best].Count {
			best = i
		}
	}
	return best
}

func topWords(counts map[string]int, n int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
