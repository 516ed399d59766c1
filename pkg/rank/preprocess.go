package rank

import (
	"gonum.org/v1/gonum/mat"
)

// MeanScale returns the mean of the nonzero gains and a copy of the matrix in
// which every nonzero gain is divided by that mean. Zero entries stay zero.
func MeanScale(gains mat.Matrix) (*mat.Dense, float64, error) {
	r, c := gains.Dims()

	var sum float64
	var count int
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := gains.At(i, j); v != 0 {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return nil, 0, ErrNoGains
	}

	mean := sum / float64(count)
	if mean == 0 {
		return nil, 0, ErrZeroTotal
	}

	scaled := mat.NewDense(r, c, nil)
	scaled.Apply(func(i, j int, v float64) float64 {
		return v / mean
	}, gains)
	return scaled, mean, nil
}
