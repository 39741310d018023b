package topic

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/cognicore/vntopic/pkg/vntopic/encode"
)

// fitGibbs runs a collapsed Gibbs sampler and returns topic-term pseudo
// counts (assignments plus eta). Non-integer cells, as produced by tf-idf
// weighting, are rounded with a floor of one occurrence.
func fitGibbs(ctx context.Context, m *encode.Matrix, cfg Config) ([][]float64, int, error) {
	k, v := cfg.Topics, m.Cols
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0x9e3779b97f4a7c15))

	words := make([][]int, m.Rows)
	for d := 0; d < m.Rows; d++ {
		cols, vals := m.Row(d)
		for i, w := range cols {
			n := occurrences(vals[i])
			for ; n > 0; n-- {
				words[d] = append(words[d], w)
			}
		}
	}

	nkw := make([][]float64, k)
	for t := range nkw {
		nkw[t] = make([]float64, v)
	}
	nk := make([]float64, k)
	ndk := make([][]float64, m.Rows)
	z := make([][]int, m.Rows)
	for d, ws := range words {
		ndk[d] = make([]float64, k)
		z[d] = make([]int, len(ws))
		for i, w := range ws {
			t := rng.IntN(k)
			z[d][i] = t
			ndk[d][t]++
			nkw[t][w]++
			nk[t]++
		}
	}

	veta := float64(v) * cfg.Eta
	p := make([]float64, k)
	iter := 0
	for ; iter < cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, iter, err
		}
		for d, ws := range words {
			for i, w := range ws {
				t := z[d][i]
				ndk[d][t]--
				nkw[t][w]--
				nk[t]--

				var total float64
				for j := 0; j < k; j++ {
					total += (ndk[d][j] + cfg.Alpha) * (nkw[j][w] + cfg.Eta) / (nk[j] + veta)
					p[j] = total
				}
				u := rng.Float64() * total
				t = k - 1
				for j := 0; j < k; j++ {
					if u < p[j] {
						t = j
						break
					}
				}

				z[d][i] = t
				ndk[d][t]++
				nkw[t][w]++
				nk[t]++
			}
		}
	}

	for t := range nkw {
		for w := range nkw[t] {
			nkw[t][w] += cfg.Eta
		}
	}
	return nkw, iter, nil
}

func occurrences(x float64) int {
	if x <= 0 {
		return 0
	}
	n := int(math.Round(x))
	if n < 1 {
		n = 1
	}
	return n
}
