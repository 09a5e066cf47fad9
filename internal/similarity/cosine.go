// Package similarity computes pairwise cosine similarity matrices.
package similarity

import (
	"math"

	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
)

// Matrix is a square symmetric similarity matrix. Entries lie in [-1, 1];
// the diagonal is 1 for nonzero vectors and 0 for zero vectors.
type Matrix struct {
	n    int
	data []float64
}

// N returns the number of rows (and columns).
func (m *Matrix) N() int { return m.n }

func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Row returns the similarities of i to every vector, backed by the matrix
// storage. Callers must not modify it.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// Rows returns the cosine similarity between every pair of rows of d.
func Rows(d *matrix.Dense) *Matrix {
	n, _ := d.Dims()
	norms := make([]float64, n)
	for i := range norms {
		norms[i] = norm(d.RawRow(i))
	}

	s := &Matrix{n: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		s.data[i*n+i] = 1
		ri := d.RawRow(i)
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			v := clamp(dot(ri, d.RawRow(j)) / (norms[i] * norms[j]))
			s.data[i*n+j] = v
			s.data[j*n+i] = v
		}
	}
	return s
}

// Columns returns the cosine similarity between every pair of columns of d.
func Columns(d *matrix.Dense) *Matrix {
	return Rows(d.T())
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// norm. It panics if the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("similarity: vectors of different length")
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot(a, b) / (na * nb))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

// clamp absorbs rounding that pushes a ratio just past ±1.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
