package rank

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrOutOfRange      = errors.New("parameter out of range")
	ErrEigenFailed     = errors.New("eigendecomposition failed")
	ErrNoConvergence   = errors.New("power iteration did not converge")
	ErrMissingVariable = errors.New("variable missing from ranking")
	ErrZeroTotal       = errors.New("scores sum to zero")
	ErrNoGains         = errors.New("gain matrix has no nonzero entries")
)

// normalizeColumns scales every column of m to an absolute sum of one.
// Columns that sum to zero are left as they are: their mass is not spread
// over the other nodes.
func normalizeColumns(m *mat.Dense) {
	r, c := m.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		total := floats.Norm(col, 1)
		if total == 0 {
			continue
		}
		floats.Scale(1/total, col)
		m.SetCol(j, col)
	}
}

// normalizeSum scales v in place so its elements sum to one
func normalizeSum(v []float64) error {
	total := floats.Sum(v)
	if total == 0 {
		return ErrZeroTotal
	}
	floats.Scale(1/total, v)
	return nil
}

func checkSquare(m mat.Matrix, n int) error {
	r, c := m.Dims()
	if n == 0 {
		return fmt.Errorf("%w: empty variable list", ErrShapeMismatch)
	}
	if r != n || c != n {
		return fmt.Errorf("%w: matrix is %dx%d, want %dx%d", ErrShapeMismatch, r, c, n, n)
	}
	return nil
}

func checkUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %g outside [0, 1]", ErrOutOfRange, name, v)
	}
	return nil
}

// isFinite reports whether every value is a finite number
func isFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
