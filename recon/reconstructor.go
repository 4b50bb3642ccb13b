package recon

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/oqtopus-team/tomo-sweep/circuit"
	"github.com/oqtopus-team/tomo-sweep/core"
	"go.uber.org/zap"
)

const (
	RECON_SETTING_KEY = "recon"

	DEFAULT_SHOTS           = 1000
	DEFAULT_LASSO_THRESHOLD = 0.05
)

type ReconSetting struct {
	Shots          int     `toml:"shots"`
	LassoThreshold float64 `toml:"lasso_threshold"`
}

func NewReconSetting() ReconSetting {
	return ReconSetting{
		Shots:          DEFAULT_SHOTS,
		LassoThreshold: DEFAULT_LASSO_THRESHOLD,
	}
}

// Sampled is the in-process tomography oracle. Each Reconstruct call
// simulates the circuit, draws a random subset of non-identity Pauli
// settings of the requested size, estimates every chosen expectation from a
// finite number of shots, and hands the estimates to the selected method.
// Estimates are therefore only reproducible for a seeded instance.
type Sampled struct {
	setting ReconSetting
	sim     core.Simulator
	rng     *rand.Rand
}

func NewSampled(sim core.Simulator) *Sampled {
	return &Sampled{
		sim: sim,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSampled fixes the sampling stream, for tests.
func NewSeededSampled(sim core.Simulator, seed int64) *Sampled {
	return &Sampled{
		sim: sim,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (r *Sampled) Setup(conf *core.Conf) error {
	setting := NewReconSetting()
	if conf.Shots > 0 {
		setting.Shots = conf.Shots
	}
	s, ok := core.GetComponentSetting(RECON_SETTING_KEY)
	if ok {
		// TODO: fix this long adhoc
		if mapped, ok := s.(map[string]interface{}); ok {
			if shots, ok := asInt(mapped["shots"]); ok {
				setting.Shots = shots
			}
			if th, ok := mapped["lasso_threshold"].(float64); ok {
				setting.LassoThreshold = th
			}
		} else if typed, ok := s.(ReconSetting); ok {
			setting = typed
		}
	}
	r.setting = setting
	zap.L().Debug(fmt.Sprintf("recon setting/shots:%d/lasso_threshold:%g",
		setting.Shots, setting.LassoThreshold))
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	}
	return 0, false
}

// SetReconOptions overrides the component setting with a job's raw options
// JSON. Unknown keys are skipped.
func (r *Sampled) SetReconOptions(raw jx.Raw) error {
	if len(raw) == 0 {
		return nil
	}
	d := jx.DecodeBytes(raw)
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "lasso_threshold":
			v, err := d.Float64()
			if err != nil {
				return errors.Wrap(err, "bad lasso_threshold in recon options")
			}
			r.setting.LassoThreshold = v
		case "shots":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "bad shots in recon options")
			}
			r.setting.Shots = v
		default:
			return d.Skip()
		}
		return nil
	})
}

func (r *Sampled) GetHealth() error {
	if r.sim == nil {
		return fmt.Errorf("no simulator backend")
	}
	return nil
}

func (r *Sampled) TearDown() {}

func (r *Sampled) Reconstruct(c *circuit.Circuit, qubits []int, settings int, method core.Method) (core.Matrix, error) {
	n := len(qubits)
	if n == 0 {
		return core.Matrix{}, fmt.Errorf("no qubits to reconstruct")
	}
	total := NumSettings(n)
	if settings < 1 || settings >= total {
		return core.Matrix{}, fmt.Errorf("settings(%d) must be in [1, %d)", settings, total)
	}
	psi, err := r.sim.Simulate(c)
	if err != nil {
		return core.Matrix{}, errors.Wrap(err, "failed to simulate the circuit")
	}
	dim := 1 << n
	if len(psi) != dim {
		return core.Matrix{}, fmt.Errorf("simulated state dimension %d does not match %d qubits",
			len(psi), n)
	}

	// Random subset of the non-identity settings. The same subset feeds
	// whichever method was requested.
	chosen := r.rng.Perm(total - 1)[:settings]

	coeffs := make(map[int]float64, settings)
	for _, idx := range chosen {
		k := idx + 1 // skip the all-identity setting
		p, err := PauliObservable(k, n)
		if err != nil {
			return core.Matrix{}, err
		}
		exact, err := ExactExpectation(psi, p)
		if err != nil {
			return core.Matrix{}, err
		}
		coeffs[k] = r.sampleExpectation(exact)
	}

	switch method {
	case core.LinearInv:
		return assemble(coeffs, n), nil
	case core.CompressedSensing:
		est := assemble(coeffs, n)
		out, err := ProjectPSD(est)
		if err != nil {
			return core.Matrix{}, errors.Wrap(err, "failed to project the estimate")
		}
		return out, nil
	case core.Lasso:
		shrunk := make(map[int]float64, len(coeffs))
		for k, v := range coeffs {
			shrunk[k] = softThreshold(v, r.setting.LassoThreshold)
		}
		return assemble(shrunk, n), nil
	default:
		return core.Matrix{}, fmt.Errorf("unknown method: %s", method)
	}
}

// sampleExpectation adds shot noise to an exact Pauli expectation by drawing
// the configured number of +-1 outcomes. Shots <= 0 means exact expectations.
func (r *Sampled) sampleExpectation(exact float64) float64 {
	shots := r.setting.Shots
	if shots <= 0 {
		return exact
	}
	p := (1 + exact) / 2
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	ups := 0
	for i := 0; i < shots; i++ {
		if r.rng.Float64() < p {
			ups++
		}
	}
	return 2*float64(ups)/float64(shots) - 1
}

// assemble rebuilds a density matrix estimate from sampled Pauli
// coefficients: rho = I/2^n + sum_k <P_k> P_k / 2^n.
func assemble(coeffs map[int]float64, numQubits int) core.Matrix {
	dim := 1 << numQubits
	rho := core.Identity(dim)
	for k, coeff := range coeffs {
		if coeff == 0 {
			continue
		}
		p, err := PauliObservable(k, numQubits)
		if err != nil {
			// The indices come from rng.Perm over the valid range.
			panic(err)
		}
		if err := rho.AddScaled(complex(coeff, 0), p); err != nil {
			// every observable is 2^n x 2^n, same as rho
			panic(err)
		}
	}
	rho.Scale(complex(1/float64(dim), 0))
	return rho
}

func softThreshold(v, lambda float64) float64 {
	if math.Abs(v) <= lambda {
		return 0
	}
	if v > 0 {
		return v - lambda
	}
	return v + lambda
}
