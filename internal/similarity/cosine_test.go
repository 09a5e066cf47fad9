package similarity

import (
	"math"
	"testing"

	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
)

func denseFrom(rows [][]float64) *matrix.Dense {
	d := matrix.NewDense(len(rows), len(rows[0]))
	for i, r := range rows {
		for j, v := range r {
			d.Set(i, j, v)
		}
	}
	return d
}

func TestRowsProperties(t *testing.T) {
	d := denseFrom([][]float64{
		{5, 3, 0, 1},
		{4, 0, 0, 1},
		{0, 0, 0, 0},
		{1, 1, 0, 5},
		{-2, 0, 3, 0},
	})
	s := Rows(d)
	if s.N() != 5 {
		t.Fatalf("expected 5x5, got %d", s.N())
	}
	for i := 0; i < s.N(); i++ {
		for j := 0; j < s.N(); j++ {
			v := s.At(i, j)
			if v != s.At(j, i) {
				t.Errorf("asymmetric at (%d,%d): %v vs %v", i, j, v, s.At(j, i))
			}
			if v < -1 || v > 1 {
				t.Errorf("out of range at (%d,%d): %v", i, j, v)
			}
		}
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s.At(i, i) != 1 {
			t.Errorf("expected diagonal 1 at %d, got %v", i, s.At(i, i))
		}
	}
	for j := 0; j < 5; j++ {
		if s.At(2, j) != 0 {
			t.Errorf("expected zero row to have similarity 0, got %v at %d", s.At(2, j), j)
		}
	}
	if s.At(0, 4) >= 0 {
		t.Errorf("expected negative similarity for opposing vectors, got %v", s.At(0, 4))
	}
}

func TestColumnsMatchesTransposedRows(t *testing.T) {
	d := denseFrom([][]float64{
		{5, 0, 4},
		{0, 3, 4},
	})
	c := Columns(d)
	if c.N() != 3 {
		t.Fatalf("expected 3x3, got %d", c.N())
	}
	want := Cosine([]float64{5, 0}, []float64{4, 4})
	if math.Abs(c.At(0, 2)-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, c.At(0, 2))
	}
	if c.At(0, 1) != 0 {
		t.Errorf("expected orthogonal columns to score 0, got %v", c.At(0, 1))
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"zero", []float64{0, 0}, []float64{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRowsEmpty(t *testing.T) {
	s := Rows(matrix.NewDense(0, 0))
	if s.N() != 0 {
		t.Errorf("expected empty matrix, got %d", s.N())
	}
}
