package recon

import (
	"fmt"
	"math/cmplx"

	"github.com/oqtopus-team/tomo-sweep/core"
)

// The four single-qubit Pauli operators, indexed by base-4 digit.
var pauliLetters = [4]byte{'I', 'X', 'Y', 'Z'}

func pauli1(digit int) core.Matrix {
	m := core.NewMatrix(2)
	switch digit {
	case 0: // I
		m.Set(0, 0, 1)
		m.Set(1, 1, 1)
	case 1: // X
		m.Set(0, 1, 1)
		m.Set(1, 0, 1)
	case 2: // Y
		m.Set(0, 1, -1i)
		m.Set(1, 0, 1i)
	case 3: // Z
		m.Set(0, 0, 1)
		m.Set(1, 1, -1)
	}
	return m
}

// NumSettings returns 4^n, the total number of Pauli measurement bases for
// n qubits. Index 0 is the all-identity operator.
func NumSettings(numQubits int) int {
	n := 1
	for i := 0; i < numQubits; i++ {
		n *= 4
	}
	return n
}

// PauliLabel renders setting index k as a Pauli string, qubit 0 rightmost.
func PauliLabel(k, numQubits int) string {
	b := make([]byte, numQubits)
	for q := 0; q < numQubits; q++ {
		b[numQubits-1-q] = pauliLetters[k%4]
		k /= 4
	}
	return string(b)
}

// PauliObservable builds the 2^n x 2^n operator for setting index k, where
// the base-4 digits of k select the Pauli on each qubit, qubit 0 being the
// least significant digit. The tensor order matches the simulator's basis
// index convention.
func PauliObservable(k, numQubits int) (core.Matrix, error) {
	if k < 0 || k >= NumSettings(numQubits) {
		return core.Matrix{}, fmt.Errorf("setting index %d out of range for %d qubits", k, numQubits)
	}
	digits := make([]int, numQubits)
	for q := 0; q < numQubits; q++ {
		digits[q] = k % 4
		k /= 4
	}
	m := pauli1(digits[numQubits-1])
	for q := numQubits - 2; q >= 0; q-- {
		m = core.Kron(m, pauli1(digits[q]))
	}
	return m, nil
}

// ExactExpectation computes <psi|P|psi>. Pauli expectations are real; the
// imaginary part is numerical noise and is discarded.
func ExactExpectation(psi []complex128, p core.Matrix) (float64, error) {
	if len(psi) != p.Dim {
		return 0, fmt.Errorf("state dimension %d does not match operator dimension %d",
			len(psi), p.Dim)
	}
	var acc complex128
	for i := 0; i < p.Dim; i++ {
		var row complex128
		for j := 0; j < p.Dim; j++ {
			row += p.At(i, j) * psi[j]
		}
		acc += cmplx.Conj(psi[i]) * row
	}
	return real(acc), nil
}
