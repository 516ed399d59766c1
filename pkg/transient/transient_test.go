package transient

import (
	"errors"
	"testing"

	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func boxes(t *testing.T, variables []string, rows ...[]float64) []rank.Dict {
	t.Helper()
	out := make([]rank.Dict, len(rows))
	for i, r := range rows {
		d, err := rank.NewDict(variables, r)
		if err != nil {
			t.Fatalf("NewDict() error = %v", err)
		}
		out[i] = d
	}
	return out
}

func TestCalcImportanceDiffs_Successive(t *testing.T) {
	variables := []string{"a", "b"}
	rankings := boxes(t, variables,
		[]float64{0.5, 0.5},
		[]float64{0.6, 0.4},
		[]float64{0.3, 0.7},
	)

	diffs, base, err := CalcImportanceDiffs(rankings, variables)
	if err != nil {
		t.Fatalf("CalcImportanceDiffs() error = %v", err)
	}

	if base["a"] != 0.5 {
		t.Errorf("Base a = %g, want 0.5", base["a"])
	}
	// Differences are relative to the previous box, not to box 0
	want := []float64{0.1, -0.3}
	if !floats.EqualApprox(diffs["a"], want, 1e-12) {
		t.Errorf("Diffs a = %v, want %v", diffs["a"], want)
	}
	if len(diffs["b"]) != 2 {
		t.Errorf("Expected 2 differences for 3 boxes, got %d", len(diffs["b"]))
	}
}

func TestCalcImportanceDiffs_SingleBox(t *testing.T) {
	variables := []string{"a"}
	diffs, base, err := CalcImportanceDiffs(boxes(t, variables, []float64{1}), variables)
	if err != nil {
		t.Fatalf("CalcImportanceDiffs() error = %v", err)
	}
	if len(diffs["a"]) != 0 || base["a"] != 1 {
		t.Errorf("Expected no differences and base 1, got %v, %v", diffs["a"], base["a"])
	}
}

func TestCalcImportanceDiffs_Errors(t *testing.T) {
	if _, _, err := CalcImportanceDiffs(nil, []string{"a"}); !errors.Is(err, ErrNoBoxes) {
		t.Errorf("Expected ErrNoBoxes, got %v", err)
	}

	rankings := boxes(t, []string{"a"}, []float64{1}, []float64{1})
	if _, _, err := CalcImportanceDiffs(rankings, []string{"a", "b"}); !errors.Is(err, ErrMissingVariable) {
		t.Errorf("Expected ErrMissingVariable, got %v", err)
	}
}

func TestReconstruct_RoundTrip(t *testing.T) {
	variables := []string{"x", "y", "z"}
	rows := [][]float64{
		{0.2, 0.3, 0.5},
		{0.25, 0.25, 0.5},
		{0.1, 0.6, 0.3},
		{0.4, 0.4, 0.2},
	}
	rankings := boxes(t, variables, rows...)

	diffs, base, err := CalcImportanceDiffs(rankings, variables)
	if err != nil {
		t.Fatalf("CalcImportanceDiffs() error = %v", err)
	}
	series, err := Reconstruct(variables, diffs, base)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	for k := range rows {
		for j, v := range variables {
			// base + sum(diffs[0:k]) == box k
			sum := base[v] + floats.Sum(diffs[v][:k])
			if !scalar.EqualWithinAbs(sum, rows[k][j], 1e-12) {
				t.Errorf("box %d %s: base+diffs = %g, want %g", k, v, sum, rows[k][j])
			}
			got, ok := series.At(v, k)
			if !ok || !scalar.EqualWithinAbs(got, rows[k][j], 1e-12) {
				t.Errorf("Series.At(%s, %d) = %g, want %g", v, k, got, rows[k][j])
			}
		}
	}

	if series.Relative.At(0, 1) != 0 {
		t.Errorf("First relative row should be zero")
	}
	if !scalar.EqualWithinAbs(series.Relative.At(2, 1), 0.35, 1e-12) {
		t.Errorf("Relative y in box 2 = %g, want 0.35", series.Relative.At(2, 1))
	}
}

func TestReconstruct_Errors(t *testing.T) {
	if _, err := Reconstruct(nil, nil, nil); !errors.Is(err, ErrMissingVariable) {
		t.Errorf("Expected ErrMissingVariable for no variables, got %v", err)
	}

	diffs := Diffs{"a": {0.1}, "b": {0.1, 0.2}}
	base := Base{"a": 0.5, "b": 0.5}
	if _, err := Reconstruct([]string{"a", "b"}, diffs, base); !errors.Is(err, ErrMissingVariable) {
		t.Errorf("Expected ErrMissingVariable for ragged diffs, got %v", err)
	}

	if _, err := Reconstruct([]string{"a"}, Diffs{"a": {0.1}}, Base{}); !errors.Is(err, ErrMissingVariable) {
		t.Errorf("Expected ErrMissingVariable for missing base, got %v", err)
	}
}
