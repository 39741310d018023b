package topic

import (
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Backend names a fitting algorithm.
type Backend string

const (
	// Gibbs is the in-house collapsed Gibbs sampler.
	Gibbs Backend = "gibbs"
	// SCVB0 is stochastic collapsed variational Bayes from james-bowman/nlp.
	SCVB0 Backend = "scvb0"
)

// Config holds the fitting knobs.
type Config struct {
	Topics          int     `yaml:"topics" json:"topics"`
	Alpha           float64 `yaml:"alpha" json:"alpha"`
	Eta             float64 `yaml:"eta" json:"eta"`
	MaxIterations   int     `yaml:"max_iterations" json:"max_iterations"`
	Seed            int64   `yaml:"seed" json:"seed"`
	Backend         Backend `yaml:"backend" json:"backend"`
	Processes       int     `yaml:"processes" json:"processes"`
	InferencePasses int     `yaml:"inference_passes" json:"inference_passes"`
	Tolerance       float64 `yaml:"tolerance" json:"tolerance"`
}

// DefaultConfig returns five topics, seed 42 and the gibbs backend.
func DefaultConfig() Config {
	return Config{
		Topics:          5,
		Alpha:           0.1,
		Eta:             0.01,
		MaxIterations:   200,
		Seed:            42,
		Backend:         Gibbs,
		Processes:       1,
		InferencePasses: 100,
		Tolerance:       1e-6,
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.Topics <= 0:
		return internalerr.Param("topics", c.Topics, "must be > 0")
	case c.Alpha <= 0:
		return internalerr.Param("alpha", c.Alpha, "must be > 0")
	case c.Eta <= 0:
		return internalerr.Param("eta", c.Eta, "must be > 0")
	case c.MaxIterations <= 0:
		return internalerr.Param("max_iterations", c.MaxIterations, "must be > 0")
	case c.InferencePasses <= 0:
		return internalerr.Param("inference_passes", c.InferencePasses, "must be > 0")
	case c.Tolerance < 0:
		return internalerr.Param("tolerance", c.Tolerance, "must be >= 0")
	case c.Processes < 0:
		return internalerr.Param("processes", c.Processes, "must be >= 0")
	}
	switch c.Backend {
	case Gibbs, SCVB0:
	default:
		return internalerr.Param("backend", c.Backend, "must be gibbs or scvb0")
	}
	return nil
}
