package simulator

import (
	"fmt"

	"github.com/oqtopus-team/tomo-sweep/circuit"
	"github.com/oqtopus-team/tomo-sweep/core"
	"go.uber.org/zap"
)

// Local is the in-process ground-truth simulator. Amplitude algebra is
// deterministic, so the same circuit always yields bit-for-bit identical
// amplitudes.
type Local struct {
	maxQubits int
}

func (l *Local) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up local simulator")
	l.maxQubits = conf.MaxQubits
	return nil
}

func (l *Local) Simulate(c *circuit.Circuit) ([]complex128, error) {
	if c == nil || c.NumQubits == 0 {
		return nil, fmt.Errorf("no circuit to simulate")
	}
	if l.maxQubits > 0 && c.NumQubits > l.maxQubits {
		return nil, fmt.Errorf("too many qubits in the circuit. We only simulate %d qubits.", l.maxQubits)
	}
	sv := NewStateVector(c.NumQubits)
	for _, g := range c.Gates {
		if err := sv.ApplyGate(g); err != nil {
			return nil, err
		}
	}
	return sv.Amplitudes, nil
}

// GroundTruth simulates the circuit and returns its density matrix, the
// outer product of the final state with its conjugate transpose.
func GroundTruth(sim core.Simulator, c *circuit.Circuit) (core.Matrix, error) {
	psi, err := sim.Simulate(c)
	if err != nil {
		return core.Matrix{}, err
	}
	return core.OuterProduct(psi), nil
}
