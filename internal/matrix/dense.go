package matrix

import "fmt"

// Dense is a row-major matrix of float64.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense returns a zeroed r×c matrix.
func NewDense(r, c int) *Dense {
	if r < 0 || c < 0 {
		panic(fmt.Sprintf("matrix: negative dimensions %dx%d", r, c))
	}
	return &Dense{rows: r, cols: c, data: make([]float64, r*c)}
}

func (d *Dense) Dims() (int, int) { return d.rows, d.cols }

func (d *Dense) At(i, j int) float64 { return d.data[i*d.cols+j] }

func (d *Dense) Set(i, j int, v float64) { d.data[i*d.cols+j] = v }

// RawRow returns row i backed by the matrix storage. Callers must not
// modify it.
func (d *Dense) RawRow(i int) []float64 {
	return d.data[i*d.cols : (i+1)*d.cols : (i+1)*d.cols]
}

// T returns the transpose as a new matrix.
func (d *Dense) T() *Dense {
	t := NewDense(d.cols, d.rows)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			t.data[j*d.rows+i] = d.data[i*d.cols+j]
		}
	}
	return t
}
