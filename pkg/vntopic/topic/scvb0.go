package topic

import (
	"fmt"
	"math"

	"github.com/james-bowman/nlp"
	"golang.org/x/exp/rand"

	"github.com/cognicore/vntopic/pkg/vntopic/encode"
)

// fitSCVB0 delegates to james-bowman/nlp. The library expects terms as rows
// and documents as columns, so the matrix is transposed on the way in. Its
// own document-topic output is discarded in favour of Model.Transform.
func fitSCVB0(m *encode.Matrix, cfg Config) ([][]float64, error) {
	lda := nlp.NewLatentDirichletAllocation(cfg.Topics)
	lda.Alpha = cfg.Alpha
	lda.Eta = cfg.Eta
	lda.Iterations = cfg.MaxIterations
	lda.TransformationPasses = cfg.InferencePasses
	if cfg.Processes > 0 {
		lda.Processes = cfg.Processes
	}
	lda.Rnd = rand.New(rand.NewSource(uint64(cfg.Seed)))

	if _, err := lda.FitTransform(m.Sparse().T()); err != nil {
		return nil, fmt.Errorf("scvb0: %w", err)
	}

	comp := lda.Components()
	rows, cols := comp.Dims()
	if rows != cfg.Topics || cols != m.Cols {
		return nil, fmt.Errorf("scvb0: components are %dx%d, want %dx%d", rows, cols, cfg.Topics, m.Cols)
	}
	out := make([][]float64, rows)
	for k := range out {
		out[k] = make([]float64, cols)
		for w := range out[k] {
			x := comp.At(k, w)
			if x < 0 || math.IsNaN(x) {
				x = 0
			}
			out[k][w] = x
		}
	}
	return out, nil
}
