//go:build unit
// +build unit

package recon

import (
	"testing"

	"github.com/oqtopus-team/tomo-sweep/circuit"
	"github.com/oqtopus-team/tomo-sweep/core"
	"github.com/oqtopus-team/tomo-sweep/simulator"
	"github.com/stretchr/testify/assert"
)

func testSimulator(t *testing.T) core.Simulator {
	t.Helper()
	sim := &simulator.Local{}
	assert.Nil(t, sim.Setup(&core.Conf{MaxQubits: core.MockMaxQubits}))
	return sim
}

func exactSampled(t *testing.T, sim core.Simulator) *Sampled {
	t.Helper()
	r := NewSeededSampled(sim, 42)
	// Shots <= 0 turns off shot noise, so estimates use exact expectations.
	core.ResetSetting()
	core.RegisterSetting(RECON_SETTING_KEY, ReconSetting{Shots: 0, LassoThreshold: 0.05})
	assert.Nil(t, r.Setup(&core.Conf{}))
	return r
}

func bellCircuit() *circuit.Circuit {
	c := circuit.New(2)
	c.AddGate("h", 0)
	c.AddControlledGate("cx", 0, 1)
	return c
}

func TestReconstructFullSettingsMatchesTruth(t *testing.T) {
	sim := testSimulator(t)
	r := exactSampled(t, sim)

	c := bellCircuit()
	truth, err := simulator.GroundTruth(sim, c)
	assert.Nil(t, err)

	// With every non-identity setting measured exactly, linear inversion
	// recovers the state up to floating point error.
	est, err := r.Reconstruct(c, c.Qubits(), NumSettings(2)-1, core.LinearInv)
	assert.Nil(t, err)
	assert.True(t, est.EqualWithin(truth, 1e-9))
}

func TestReconstructCompressedSensingIsPhysical(t *testing.T) {
	sim := testSimulator(t)
	r := NewSeededSampled(sim, 7)
	core.ResetSetting()
	core.RegisterSetting(RECON_SETTING_KEY, ReconSetting{Shots: 200, LassoThreshold: 0.05})
	assert.Nil(t, r.Setup(&core.Conf{}))

	c := bellCircuit()
	est, err := r.Reconstruct(c, c.Qubits(), 5, core.CompressedSensing)
	assert.Nil(t, err)
	assert.InDelta(t, 1.0, real(est.Trace()), 1e-9)
	assert.True(t, est.IsHermitian(1e-9))

	w, _, err := EigHermitian(est)
	assert.Nil(t, err)
	for _, lam := range w {
		assert.GreaterOrEqual(t, lam, -1e-9)
	}
}

func TestReconstructLassoShrinksSmallCoefficients(t *testing.T) {
	sim := testSimulator(t)
	r := NewSeededSampled(sim, 13)
	core.ResetSetting()
	core.RegisterSetting(RECON_SETTING_KEY, ReconSetting{Shots: 0, LassoThreshold: 2.0})
	assert.Nil(t, r.Setup(&core.Conf{}))

	// A threshold above 1 wipes out every Pauli coefficient, leaving the
	// maximally mixed state.
	c := bellCircuit()
	est, err := r.Reconstruct(c, c.Qubits(), NumSettings(2)-1, core.Lasso)
	assert.Nil(t, err)
	mixed := core.Identity(4)
	mixed.Scale(complex(0.25, 0))
	assert.True(t, est.EqualWithin(mixed, 1e-12))
}

func TestReconstructSettingsOutOfRange(t *testing.T) {
	sim := testSimulator(t)
	r := exactSampled(t, sim)
	c := bellCircuit()

	_, err := r.Reconstruct(c, c.Qubits(), 0, core.LinearInv)
	assert.EqualError(t, err, "settings(0) must be in [1, 16)")

	_, err = r.Reconstruct(c, c.Qubits(), NumSettings(2), core.LinearInv)
	assert.EqualError(t, err, "settings(16) must be in [1, 16)")
}

func TestReconstructSeededIsReproducible(t *testing.T) {
	sim := testSimulator(t)
	c := bellCircuit()

	core.ResetSetting()
	core.RegisterSetting(RECON_SETTING_KEY, ReconSetting{Shots: 100, LassoThreshold: 0.05})

	first := NewSeededSampled(sim, 99)
	assert.Nil(t, first.Setup(&core.Conf{}))
	second := NewSeededSampled(sim, 99)
	assert.Nil(t, second.Setup(&core.Conf{}))

	a, err := first.Reconstruct(c, c.Qubits(), 7, core.LinearInv)
	assert.Nil(t, err)
	b, err := second.Reconstruct(c, c.Qubits(), 7, core.LinearInv)
	assert.Nil(t, err)
	assert.Equal(t, a, b)
}

func TestSetupReadsComponentSetting(t *testing.T) {
	sim := testSimulator(t)
	r := NewSampled(sim)

	core.ResetSetting()
	core.RegisterSetting(RECON_SETTING_KEY, map[string]interface{}{
		"shots":           int64(123),
		"lasso_threshold": 0.25,
	})
	assert.Nil(t, r.Setup(&core.Conf{Shots: 1000}))
	assert.Equal(t, 123, r.setting.Shots)
	assert.Equal(t, 0.25, r.setting.LassoThreshold)
}

func TestSetReconOptions(t *testing.T) {
	sim := testSimulator(t)
	r := exactSampled(t, sim)

	assert.Nil(t, r.SetReconOptions([]byte(`{"lasso_threshold":2.0,"shots":7,"other":true}`)))
	assert.Equal(t, 2.0, r.setting.LassoThreshold)
	assert.Equal(t, 7, r.setting.Shots)

	// empty options leave the setting untouched
	assert.Nil(t, r.SetReconOptions(nil))
	assert.Equal(t, 2.0, r.setting.LassoThreshold)

	assert.Error(t, r.SetReconOptions([]byte(`{"lasso_threshold":"high"}`)))
}

func TestSetReconOptionsDrivesLasso(t *testing.T) {
	sim := testSimulator(t)
	r := exactSampled(t, sim)
	assert.Nil(t, r.SetReconOptions([]byte(`{"lasso_threshold":2.0}`)))

	// A threshold above 1 wipes out every Pauli coefficient.
	c := bellCircuit()
	est, err := r.Reconstruct(c, c.Qubits(), NumSettings(2)-1, core.Lasso)
	assert.Nil(t, err)
	mixed := core.Identity(4)
	mixed.Scale(complex(0.25, 0))
	assert.True(t, est.EqualWithin(mixed, 1e-12))
}

func TestGetHealth(t *testing.T) {
	assert.Nil(t, NewSampled(testSimulator(t)).GetHealth())
	assert.EqualError(t, NewSampled(nil).GetHealth(), "no simulator backend")
}

func TestSoftThreshold(t *testing.T) {
	assert.Equal(t, 0.0, softThreshold(0.04, 0.05))
	assert.Equal(t, 0.0, softThreshold(-0.04, 0.05))
	assert.InDelta(t, 0.25, softThreshold(0.3, 0.05), 1e-12)
	assert.InDelta(t, -0.25, softThreshold(-0.3, 0.05), 1e-12)
}
