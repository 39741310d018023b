package report

import (
	"fmt"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"
)

// Point is one document in the 2D projection.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Topic int     `json:"topic"`
	Label string  `json:"label,omitempty"`
}

// ProjectOptions tunes t-SNE.
type ProjectOptions struct {
	Perplexity   float64
	LearningRate float64
	MaxIter      int
}

// DefaultProjectOptions returns the usual t-SNE settings.
func DefaultProjectOptions() ProjectOptions {
	return ProjectOptions{Perplexity: 30, LearningRate: 100, MaxIter: 300}
}

// Project embeds document-topic rows in two dimensions with t-SNE. The
// layout is for display only: t-SNE starts from random positions, so two
// runs differ. Perplexity is capped for small corpora.
func Project(docTopic [][]float64, topics []int, labels []string, opts ProjectOptions) ([]Point, error) {
	n := len(docTopic)
	if len(topics) != n {
		return nil, fmt.Errorf("project: %d rows but %d topic ids", n, len(topics))
	}
	points := make([]Point, n)
	for i := range points {
		points[i].Topic = topics[i]
		if i < len(labels) {
			points[i].Label = labels[i]
		}
	}
	if n < 3 {
		for i := range points {
			points[i].X = float64(i)
		}
		return points, nil
	}

	k := len(docTopic[0])
	data := make([]float64, 0, n*k)
	for i, row := range docTopic {
		if len(row) != k {
			return nil, fmt.Errorf("project: row %d has %d topics, want %d", i, len(row), k)
		}
		data = append(data, row...)
	}

	perplexity := opts.Perplexity
	if limit := float64(n-1) / 3; perplexity > limit {
		perplexity = limit
	}
	if perplexity < 1 {
		perplexity = 1
	}

	t := tsne.NewTSNE(2, perplexity, opts.LearningRate, opts.MaxIter, false)
	t.EmbedData(mat.NewDense(n, k, data), nil)
	for i := range points {
		points[i].X = t.Y.At(i, 0)
		points[i].Y = t.Y.At(i, 1)
	}
	return points, nil
}
