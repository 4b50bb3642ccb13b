package core

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Matrix is a dense row-major complex square matrix. Density matrices and
// Pauli observables are both carried in this form.
type Matrix struct {
	Dim  int
	Data []complex128
}

func NewMatrix(dim int) Matrix {
	return Matrix{
		Dim:  dim,
		Data: make([]complex128, dim*dim),
	}
}

// Identity returns the dim x dim identity matrix.
func Identity(dim int) Matrix {
	m := NewMatrix(dim)
	for i := 0; i < dim; i++ {
		m.Data[i*dim+i] = 1
	}
	return m
}

func (m Matrix) At(i, j int) complex128 {
	return m.Data[i*m.Dim+j]
}

func (m Matrix) Set(i, j int, v complex128) {
	m.Data[i*m.Dim+j] = v
}

func (m Matrix) Clone() Matrix {
	c := NewMatrix(m.Dim)
	copy(c.Data, m.Data)
	return c
}

// Sub returns m - o.
func (m Matrix) Sub(o Matrix) (Matrix, error) {
	if m.Dim != o.Dim {
		return Matrix{}, fmt.Errorf("dimension mismatch: %d vs %d", m.Dim, o.Dim)
	}
	r := NewMatrix(m.Dim)
	for i := range m.Data {
		r.Data[i] = m.Data[i] - o.Data[i]
	}
	return r, nil
}

// AddScaled accumulates a*o into m in place.
func (m Matrix) AddScaled(a complex128, o Matrix) error {
	if m.Dim != o.Dim {
		return fmt.Errorf("dimension mismatch: %d vs %d", m.Dim, o.Dim)
	}
	for i := range m.Data {
		m.Data[i] += a * o.Data[i]
	}
	return nil
}

func (m Matrix) Scale(a complex128) {
	for i := range m.Data {
		m.Data[i] *= a
	}
}

func (m Matrix) Trace() complex128 {
	var t complex128
	for i := 0; i < m.Dim; i++ {
		t += m.Data[i*m.Dim+i]
	}
	return t
}

// FrobeniusNorm is the square root of the sum of squared magnitudes of all
// entries. This is the error metric of the sweep.
func (m Matrix) FrobeniusNorm() float64 {
	sum := 0.0
	for _, v := range m.Data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// FrobeniusDistance returns ||a - b||_F.
func FrobeniusDistance(a, b Matrix) (float64, error) {
	d, err := a.Sub(b)
	if err != nil {
		return 0, err
	}
	return d.FrobeniusNorm(), nil
}

func (m Matrix) IsHermitian(tol float64) bool {
	for i := 0; i < m.Dim; i++ {
		for j := i; j < m.Dim; j++ {
			if cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// EqualWithin reports whether every entry of m and o differs by at most tol.
func (m Matrix) EqualWithin(o Matrix, tol float64) bool {
	if m.Dim != o.Dim {
		return false
	}
	for i := range m.Data {
		if cmplx.Abs(m.Data[i]-o.Data[i]) > tol {
			return false
		}
	}
	return true
}

// OuterProduct builds |psi><psi| from a state vector. The ground-truth
// density matrix of a sweep is the outer product of the simulated amplitudes
// with their conjugates.
func OuterProduct(psi []complex128) Matrix {
	dim := len(psi)
	m := NewMatrix(dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			m.Data[i*dim+j] = psi[i] * cmplx.Conj(psi[j])
		}
	}
	return m
}

// Kron returns the Kronecker product of a and b.
func Kron(a, b Matrix) Matrix {
	dim := a.Dim * b.Dim
	m := NewMatrix(dim)
	for i := 0; i < a.Dim; i++ {
		for j := 0; j < a.Dim; j++ {
			av := a.At(i, j)
			if av == 0 {
				continue
			}
			for k := 0; k < b.Dim; k++ {
				for l := 0; l < b.Dim; l++ {
					m.Set(i*b.Dim+k, j*b.Dim+l, av*b.At(k, l))
				}
			}
		}
	}
	return m
}
