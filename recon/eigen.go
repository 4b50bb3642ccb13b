package recon

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/oqtopus-team/tomo-sweep/core"
)

const (
	jacobiMaxSweeps = 100
	jacobiTolerance = 1e-12
)

// EigHermitian diagonalizes a Hermitian matrix with cyclic Jacobi rotations.
// It returns the real eigenvalues and a unitary matrix whose columns are the
// corresponding eigenvectors, so that A = V diag(w) V^H.
func EigHermitian(a core.Matrix) (w []float64, v core.Matrix, err error) {
	if !a.IsHermitian(1e-9) {
		return nil, core.Matrix{}, fmt.Errorf("matrix is not Hermitian")
	}
	dim := a.Dim
	m := a.Clone()
	v = core.Identity(dim)

	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		off := offDiagonalNorm(m)
		if off < jacobiTolerance {
			break
		}
		for p := 0; p < dim-1; p++ {
			for q := p + 1; q < dim; q++ {
				apq := m.At(p, q)
				r := cmplx.Abs(apq)
				if r < jacobiTolerance {
					continue
				}
				phi := cmplx.Phase(apq)
				app := real(m.At(p, p))
				aqq := real(m.At(q, q))
				theta := 0.5 * math.Atan2(2*r, app-aqq)
				c := complex(math.Cos(theta), 0)
				s := math.Sin(theta)
				// J columns: col p = (c, s e^{-i phi}), col q = (-s e^{i phi}, c)
				sp := complex(s*math.Cos(-phi), s*math.Sin(-phi))
				sq := complex(s*math.Cos(phi), s*math.Sin(phi))

				// B = M J
				for k := 0; k < dim; k++ {
					mkp := m.At(k, p)
					mkq := m.At(k, q)
					m.Set(k, p, mkp*c+mkq*sp)
					m.Set(k, q, -mkp*sq+mkq*c)
				}
				// M = J^H B
				for l := 0; l < dim; l++ {
					mpl := m.At(p, l)
					mql := m.At(q, l)
					m.Set(p, l, c*mpl+sq*mql)
					m.Set(q, l, -sp*mpl+c*mql)
				}
				// V = V J
				for k := 0; k < dim; k++ {
					vkp := v.At(k, p)
					vkq := v.At(k, q)
					v.Set(k, p, vkp*c+vkq*sp)
					v.Set(k, q, -vkp*sq+vkq*c)
				}
			}
		}
	}

	w = make([]float64, dim)
	for i := 0; i < dim; i++ {
		w[i] = real(m.At(i, i))
	}
	return w, v, nil
}

func offDiagonalNorm(m core.Matrix) float64 {
	sum := 0.0
	for i := 0; i < m.Dim; i++ {
		for j := 0; j < m.Dim; j++ {
			if i == j {
				continue
			}
			v := m.At(i, j)
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return math.Sqrt(sum)
}

// ProjectPSD clips negative eigenvalues of a Hermitian matrix to zero and
// renormalizes the result to unit trace. Low setting counts routinely
// produce non-physical linear-inversion estimates; this projection is what
// makes the compressed-sensing estimate a valid density matrix.
func ProjectPSD(a core.Matrix) (core.Matrix, error) {
	w, v, err := EigHermitian(a)
	if err != nil {
		return core.Matrix{}, err
	}
	dim := a.Dim
	trace := 0.0
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
		trace += w[i]
	}
	if trace <= 0 {
		// Everything was clipped; fall back to the maximally mixed state.
		return maximallyMixed(dim), nil
	}
	out := core.NewMatrix(dim)
	for k := 0; k < dim; k++ {
		if w[k] == 0 {
			continue
		}
		lam := complex(w[k]/trace, 0)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				out.Data[i*dim+j] += lam * v.At(i, k) * cmplx.Conj(v.At(j, k))
			}
		}
	}
	return out, nil
}

func maximallyMixed(dim int) core.Matrix {
	m := core.Identity(dim)
	m.Scale(complex(1/float64(dim), 0))
	return m
}
