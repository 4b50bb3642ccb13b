package sweep

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/tomo-sweep/circuit"
	"github.com/oqtopus-team/tomo-sweep/core"
	"go.uber.org/zap"
)

// Config is everything a single evaluation sweep needs beyond its circuit.
// Callers build it explicitly; nothing here is read from globals.
type Config struct {
	Qubits []int
	// Trials is the number of repetitions averaged per setting count.
	Trials int
	// MaxSettings bounds the swept setting counts to [1, MaxSettings).
	// DefaultMaxSettings gives the full range for a qubit count.
	MaxSettings int
	Methods     []core.Method
}

// Series is one method's curve: mean Frobenius errors ordered by increasing
// setting count, exactly one entry per count in [1, MaxSettings).
type Series struct {
	Method     core.Method
	MeanErrors []float64
}

// DefaultMaxSettings returns 4^n, the exclusive upper bound covering every
// proper subset size of the Pauli bases for n qubits.
func DefaultMaxSettings(numQubits int) int {
	n := 1
	for i := 0; i < numQubits; i++ {
		n *= 4
	}
	return n
}

func (c Config) validate(truth core.Matrix) error {
	if len(c.Qubits) == 0 {
		return fmt.Errorf("no qubits configured")
	}
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.MaxSettings < 2 {
		return fmt.Errorf("max settings must be at least 2 to sweep anything, got %d", c.MaxSettings)
	}
	if len(c.Methods) == 0 {
		return fmt.Errorf("no reconstruction methods configured")
	}
	if dim := 1 << len(c.Qubits); truth.Dim != dim {
		return fmt.Errorf("ground truth dimension %d does not match %d qubits", truth.Dim, len(c.Qubits))
	}
	return nil
}

// Run executes the evaluation sweep. For every setting count s in
// [1, cfg.MaxSettings) it runs cfg.Trials reconstructions per method,
// measures each estimate's Frobenius distance to the ground truth, and
// records the mean. All methods share a setting count within a trial, so
// their curves are comparable point by point.
//
// The first reconstructor error aborts the whole sweep; no partial series
// are returned.
func Run(cfg Config, c *circuit.Circuit, truth core.Matrix, rec core.Reconstructor) ([]Series, error) {
	if err := cfg.validate(truth); err != nil {
		return nil, err
	}

	numPoints := cfg.MaxSettings - 1
	sums := make([][]float64, len(cfg.Methods))
	for i := range sums {
		sums[i] = make([]float64, numPoints)
	}

	for s := 1; s < cfg.MaxSettings; s++ {
		for trial := 0; trial < cfg.Trials; trial++ {
			for mi, method := range cfg.Methods {
				est, err := rec.Reconstruct(c, cfg.Qubits, s, method)
				if err != nil {
					return nil, errors.Wrapf(err, "reconstruction failed (method:%s/settings:%d/trial:%d)",
						method, s, trial)
				}
				dist, err := core.FrobeniusDistance(truth, est)
				if err != nil {
					return nil, errors.Wrapf(err, "bad estimate shape (method:%s/settings:%d)", method, s)
				}
				sums[mi][s-1] += dist
			}
		}
		zap.L().Debug(fmt.Sprintf("swept settings:%d/%d", s, cfg.MaxSettings-1))
	}

	series := make([]Series, len(cfg.Methods))
	for mi, method := range cfg.Methods {
		means := make([]float64, numPoints)
		for i, sum := range sums[mi] {
			means[i] = sum / float64(cfg.Trials)
		}
		series[mi] = Series{Method: method, MeanErrors: means}
	}
	return series, nil
}
