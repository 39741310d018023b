// Package topic fits a K-topic latent Dirichlet allocation over a
// document-term matrix and infers per-document topic distributions.
//
// Topic indices and exact weights depend on the seed and on the backend.
// Two fits of the same corpus with different seeds, or with gibbs versus
// scvb0, may number the same concept differently. Within one fitted Model
// the numbering is fixed, and Transform is deterministic.
package topic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cognicore/vntopic/pkg/vntopic/encode"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Model is a fitted topic model. Components is K x |V| and non-negative.
type Model struct {
	K               int         `json:"k"`
	Alpha           float64     `json:"alpha"`
	Eta             float64     `json:"eta"`
	Components      [][]float64 `json:"components"`
	InferencePasses int         `json:"inference_passes"`
	Tolerance       float64     `json:"tolerance"`
	Backend         Backend     `json:"backend"`
	Seed            int64       `json:"seed"`
	Iterations      int         `json:"iterations"`
}

// Fitted pairs a model with the document-topic rows of its training matrix.
type Fitted struct {
	Model    *Model
	DocTopic [][]float64
}

// Fit trains a model on m. It blocks until the iteration cap is reached;
// the result is the best estimate found within that cap.
func Fit(ctx context.Context, m *encode.Matrix, cfg Config, logger *slog.Logger) (*Fitted, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Rows == 0 {
		return nil, fmt.Errorf("topic: fit on a matrix with zero rows: %w", internalerr.ErrInvalidConfig)
	}
	if m.Cols == 0 {
		return nil, fmt.Errorf("topic: fit on a matrix with zero columns: %w", internalerr.ErrInvalidConfig)
	}

	start := time.Now()
	logger.Info("fitting topic model",
		"backend", cfg.Backend, "topics", cfg.Topics, "docs", m.Rows, "terms", m.Cols, "seed", cfg.Seed)

	var (
		comp  [][]float64
		iters = cfg.MaxIterations
		err   error
	)
	switch cfg.Backend {
	case SCVB0:
		comp, err = fitSCVB0(m, cfg)
	default:
		comp, iters, err = fitGibbs(ctx, m, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("topic: %w", err)
	}

	model := &Model{
		K:               cfg.Topics,
		Alpha:           cfg.Alpha,
		Eta:             cfg.Eta,
		Components:      comp,
		InferencePasses: cfg.InferencePasses,
		Tolerance:       cfg.Tolerance,
		Backend:         cfg.Backend,
		Seed:            cfg.Seed,
		Iterations:      iters,
	}
	dt, err := model.Transform(m)
	if err != nil {
		return nil, err
	}

	logger.Info("topic model fitted", "iterations", iters, "elapsed", time.Since(start))
	return &Fitted{Model: model, DocTopic: dt}, nil
}

// Terms returns the vocabulary size the model was fitted on.
func (m *Model) Terms() int {
	if len(m.Components) == 0 {
		return 0
	}
	return len(m.Components[0])
}

// Validate checks a model restored from storage.
func (m *Model) Validate() error {
	if m.K <= 0 || len(m.Components) != m.K {
		return fmt.Errorf("topic: model has k=%d but %d component rows: %w", m.K, len(m.Components), internalerr.ErrInvalidInput)
	}
	v := m.Terms()
	if v == 0 {
		return fmt.Errorf("topic: model has no terms: %w", internalerr.ErrInvalidInput)
	}
	for k, row := range m.Components {
		if len(row) != v {
			return fmt.Errorf("topic: component row %d has %d terms, want %d: %w", k, len(row), v, internalerr.ErrInvalidInput)
		}
		for _, x := range row {
			if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("topic: component row %d has weight %v: %w", k, x, internalerr.ErrInvalidInput)
			}
		}
	}
	if m.Alpha <= 0 || m.InferencePasses <= 0 {
		return fmt.Errorf("topic: model priors not set: %w", internalerr.ErrInvalidInput)
	}
	return nil
}

// TopicTerm returns each topic's term distribution (rows sum to 1).
func (m *Model) TopicTerm() [][]float64 {
	phi := make([][]float64, len(m.Components))
	for k, row := range m.Components {
		var s float64
		for _, x := range row {
			s += x
		}
		phi[k] = make([]float64, len(row))
		if s == 0 {
			for w := range phi[k] {
				phi[k][w] = 1 / float64(len(row))
			}
			continue
		}
		for w, x := range row {
			phi[k][w] = x / s
		}
	}
	return phi
}

// Transform infers the topic distribution of every row of x by folding it
// into the fixed topics. It starts each document from a uniform
// distribution and iterates for at most InferencePasses, stopping early once
// no weight moves by more than Tolerance. A document with no vocabulary
// terms gets the uniform distribution. Rows always sum to 1.
func (m *Model) Transform(x *encode.Matrix) ([][]float64, error) {
	if x.Cols != m.Terms() {
		return nil, fmt.Errorf("topic: matrix has %d columns, model has %d terms: %w", x.Cols, m.Terms(), internalerr.ErrInvalidInput)
	}
	phi := m.TopicTerm()
	out := make([][]float64, x.Rows)
	theta := make([]float64, m.K)
	next := make([]float64, m.K)
	for d := 0; d < x.Rows; d++ {
		cols, vals := x.Row(d)
		for k := range theta {
			theta[k] = 1 / float64(m.K)
		}
		if len(cols) > 0 {
			m.foldIn(phi, cols, vals, theta, next)
		}
		out[d] = append([]float64(nil), theta...)
	}
	return out, nil
}

func (m *Model) foldIn(phi [][]float64, cols []int, vals []float64, theta, next []float64) {
	for pass := 0; pass < m.InferencePasses; pass++ {
		for k := range next {
			next[k] = m.Alpha
		}
		for i, w := range cols {
			var z float64
			for k := range theta {
				z += theta[k] * phi[k][w]
			}
			if z == 0 {
				continue
			}
			for k := range theta {
				next[k] += vals[i] * theta[k] * phi[k][w] / z
			}
		}
		var s float64
		for _, v := range next {
			s += v
		}
		var delta float64
		for k := range theta {
			v := next[k] / s
			delta = math.Max(delta, math.Abs(v-theta[k]))
			theta[k] = v
		}
		if delta <= m.Tolerance {
			return
		}
	}
}

// Assign returns the highest-weight topic of each row. Ties go to the
// lowest topic index.
func Assign(docTopic [][]float64) []int {
	out := make([]int, len(docTopic))
	for d, row := range docTopic {
		best := 0
		for k := 1; k < len(row); k++ {
			if row[k] > row[best] {
				best = k
			}
		}
		out[d] = best
	}
	return out
}
